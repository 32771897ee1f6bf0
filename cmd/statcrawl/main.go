// Command statcrawl downloads every dataset listed in a line-oriented
// manifest ("<link> <name>" per line) into a local data directory and
// writes a companion manifest of raw-file URLs.
//
// Defaults can be set in a .env file or the environment
// (STATCRAWL_MANIFEST, STATCRAWL_DATA_DIR, STATCRAWL_LINKS,
// STATCRAWL_RAW_BASE) and overridden by flags.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/tsawler/statcrawl"
)

func main() {
	var (
		manifestPath = flag.String("manifest", envOr("STATCRAWL_MANIFEST", "dataset_links.txt"), "path to the dataset manifest")
		dataDir      = flag.String("data", envOr("STATCRAWL_DATA_DIR", "data"), "directory to store CSV files in")
		linksPath    = flag.String("links", envOr("STATCRAWL_LINKS", "github_links.txt"), "path of the raw-link manifest to write")
		rawBase      = flag.String("base", envOr("STATCRAWL_RAW_BASE", statcrawl.DefaultRawLinkBase), "base URL for raw links")
		quiet        = flag.Bool("quiet", false, "disable the progress bar")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	c := statcrawl.New(
		statcrawl.WithDataDir(*dataDir),
		statcrawl.WithRawLinksPath(*linksPath),
		statcrawl.WithRawLinkBase(*rawBase),
		statcrawl.WithProgress(!*quiet),
		statcrawl.WithLogger(logger),
	)

	if err := c.Run(context.Background(), *manifestPath); err != nil {
		logger.Error("crawl failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
