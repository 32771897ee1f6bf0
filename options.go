package statcrawl

import (
	"log/slog"
	"time"

	"github.com/pkg/browser"

	"github.com/tsawler/statcrawl/fetch"
)

// DefaultRawLinkBase is where the stored CSVs are expected to be served
// from once pushed; Run writes one "<base>/<name>.csv" line per entry.
const DefaultRawLinkBase = "https://raw.githubusercontent.com/tsawler/statcrawl-data/master/data"

// options holds crawler configuration.
type options struct {
	dataDir      string
	rawLinksPath string
	rawLinkBase  string
	client       *fetch.Client
	progress     bool
	log          *slog.Logger
	browserWait  time.Duration
	openBrowser  func(url string) error
}

func defaultOptions() options {
	return options{
		dataDir:      "data",
		rawLinksPath: "github_links.txt",
		rawLinkBase:  DefaultRawLinkBase,
		progress:     true,
		log:          slog.Default(),
		browserWait:  browserWait,
		openBrowser:  browser.OpenURL,
	}
}

// Option configures a Crawler.
type Option func(*options)

// WithDataDir sets the directory CSV files are written to.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// WithRawLinksPath sets the path of the raw-link manifest.
func WithRawLinksPath(path string) Option {
	return func(o *options) { o.rawLinksPath = path }
}

// WithRawLinkBase sets the base URL prefixed to every raw link.
func WithRawLinkBase(base string) Option {
	return func(o *options) { o.rawLinkBase = base }
}

// WithClient substitutes the HTTP client used for all fetches.
func WithClient(c *fetch.Client) Option {
	return func(o *options) { o.client = c }
}

// WithProgress toggles the per-year progress bar.
func WithProgress(on bool) Option {
	return func(o *options) { o.progress = on }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithBrowserWait sets the pause before the manual-download fallback
// opens the browser.
func WithBrowserWait(d time.Duration) Option {
	return func(o *options) { o.browserWait = d }
}

// WithBrowserOpener substitutes the function used to open manual links.
func WithBrowserOpener(open func(url string) error) Option {
	return func(o *options) { o.openBrowser = open }
}
