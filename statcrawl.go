// Package statcrawl downloads a batch of publicly hosted statistical
// datasets described by a line-oriented manifest and stores each one as
// a local CSV file.
//
// Each manifest entry is dispatched on its link:
//
//   - World Bank links are zipped CSV bundles; the data member is
//     extracted and the zip discarded.
//   - OECD links are plain CSV downloads.
//   - Numbeo links are ranking pages scraped across every available
//     year and combined into one time-series CSV.
//   - Anything else is opened in the system browser for manual download.
//
// Basic usage:
//
//	c := statcrawl.New(statcrawl.WithDataDir("data"))
//	if err := c.Run(context.Background(), "dataset_links.txt"); err != nil {
//	    log.Fatal(err)
//	}
package statcrawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsawler/statcrawl/archive"
	"github.com/tsawler/statcrawl/fetch"
	"github.com/tsawler/statcrawl/manifest"
	"github.com/tsawler/statcrawl/yearseries"
)

// browserWait is how long to wait before opening a manual-download link,
// giving the operator time to read the instructions.
const browserWait = 3 * time.Second

// Crawler processes manifest entries one at a time, in order. The first
// failing entry aborts the run.
type Crawler struct {
	opts   options
	client *fetch.Client
	series *yearseries.Fetcher
}

// New builds a Crawler. Without options it writes CSVs to "data/" and
// the raw-link manifest to "github_links.txt".
func New(opt ...Option) *Crawler {
	opts := defaultOptions()
	for _, o := range opt {
		o(&opts)
	}

	client := opts.client
	if client == nil {
		client = fetch.NewClient()
	}

	return &Crawler{
		opts:   opts,
		client: client,
		series: yearseries.New(client, yearseries.WithProgress(opts.progress)),
	}
}

// Run loads the manifest at manifestPath and processes every entry.
// The data directory is created when absent; the raw-link manifest is
// rewritten from scratch, one line per processed entry. Entries whose
// CSV already exists are skipped but still contribute a raw link.
func (c *Crawler) Run(ctx context.Context, manifestPath string) error {
	entries, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.opts.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	links, err := os.Create(c.opts.rawLinksPath)
	if err != nil {
		return fmt.Errorf("creating raw-link manifest: %w", err)
	}

	for _, e := range entries {
		if err := c.crawl(ctx, e); err != nil {
			links.Close()
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		if err := manifest.WriteRawLinks(links, c.opts.rawLinkBase, []manifest.Entry{e}); err != nil {
			links.Close()
			return err
		}
	}

	return links.Close()
}

// crawl fetches one dataset, dispatching on the link.
func (c *Crawler) crawl(ctx context.Context, e manifest.Entry) error {
	dest := filepath.Join(c.opts.dataDir, e.Name+".csv")
	if _, err := os.Stat(dest); err == nil {
		c.opts.log.Info("already present, skipping", "dataset", e.Name)
		return nil
	}

	switch {
	case strings.Contains(e.Link, "worldbank"):
		return c.crawlWorldBank(ctx, e, dest)
	case strings.Contains(e.Link, "oecd"):
		c.opts.log.Info("downloading CSV", "dataset", e.Name, "link", e.Link)
		return c.client.Download(ctx, e.Link, dest)
	case strings.Contains(e.Link, "numbeo"):
		return c.crawlYearSeries(ctx, e, dest)
	default:
		return c.manualFallback(ctx, e)
	}
}

func (c *Crawler) crawlWorldBank(ctx context.Context, e manifest.Entry, dest string) error {
	c.opts.log.Info("downloading zip bundle", "dataset", e.Name, "link", e.Link)

	zipPath := filepath.Join(c.opts.dataDir, e.Name+".zip")
	if err := c.client.Download(ctx, e.Link, zipPath); err != nil {
		return err
	}
	return archive.ExtractCSV(zipPath, dest)
}

func (c *Crawler) crawlYearSeries(ctx context.Context, e manifest.Entry, dest string) error {
	c.opts.log.Info("scraping year series", "dataset", e.Name, "link", e.Link)

	d, err := c.series.FetchAllYears(ctx, e.Link)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := d.WriteCSV(f, true); err != nil {
		f.Close()
		os.Remove(dest)
		return err
	}
	return f.Close()
}

// manualFallback handles sources with no automatic download path: it
// tells the operator what to do, waits a moment, then opens the link.
// A browser that cannot be opened (headless hosts) is logged, not fatal.
func (c *Crawler) manualFallback(ctx context.Context, e manifest.Entry) error {
	c.opts.log.Info("not automatically downloadable; please download manually and save as <name>.csv",
		"dataset", e.Name, "link", e.Link)

	select {
	case <-time.After(c.opts.browserWait):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.opts.openBrowser(e.Link); err != nil {
		c.opts.log.Warn("could not open browser", "link", e.Link, "error", err)
	}
	return nil
}
