// Package manifest reads the line-oriented dataset manifest and writes
// the companion manifest of raw-file URLs.
//
// The input format is one dataset per line, "<link> <name>", where name
// becomes the local CSV file name (without extension). The output
// manifest lists, for every entry, the URL under which the stored CSV
// will later be served.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one manifest line: the source link and the local dataset name.
type Entry struct {
	Link string
	Name string
}

// Parse reads entries from r. Blank lines are skipped; a line that does
// not split into exactly a link and a name is an error.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"<link> <name>\", got %q", line, text)
		}
		entries = append(entries, Entry{Link: fields[0], Name: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return entries, nil
}

// Load reads entries from the file at path.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// WriteRawLinks writes one raw-file URL per entry, "<base>/<name>.csv",
// in entry order.
func WriteRawLinks(w io.Writer, base string, entries []Entry) error {
	base = strings.TrimRight(base, "/")
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s/%s.csv\n", base, e.Name); err != nil {
			return fmt.Errorf("writing raw link for %s: %w", e.Name, err)
		}
	}
	return nil
}
