// Package archive extracts the data CSV from World Bank bulk-download
// zip files.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// dataPrefix marks the zip member holding the indicator data; the other
// members are metadata sheets.
const dataPrefix = "API_"

// ErrNoDataMember reports a zip without an API_*.csv member.
var ErrNoDataMember = errors.New("no API_*.csv member in archive")

// ExtractCSV pulls the first API_*.csv member out of the zip at zipPath,
// writes it to destPath, and removes the zip. The zip is kept when
// extraction fails.
func ExtractCSV(zipPath, destPath string) error {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", zipPath, err)
	}

	member := findDataMember(archive)
	if member == nil {
		archive.Close()
		return fmt.Errorf("%s: %w", zipPath, ErrNoDataMember)
	}

	if err := extractMember(member, destPath); err != nil {
		archive.Close()
		return err
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", zipPath, err)
	}

	if err := os.Remove(zipPath); err != nil {
		return fmt.Errorf("removing %s: %w", zipPath, err)
	}
	return nil
}

func findDataMember(archive *zip.ReadCloser) *zip.File {
	for _, f := range archive.File {
		name := path.Base(f.Name)
		if strings.HasPrefix(name, dataPrefix) && strings.HasSuffix(name, ".csv") {
			return f
		}
	}
	return nil
}

func extractMember(member *zip.File, destPath string) error {
	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("opening member %s: %w", member.Name, err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return fmt.Errorf("extracting %s: %w", member.Name, err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destPath, err)
	}
	return nil
}
