// Package yearseries fetches every yearly edition of a ranked statistics
// page and combines them into one time-series dataset.
//
// The base page is expected to carry a page-selection form (class
// "changePageForm") whose options enumerate the available editions.
// Mid-year snapshots are skipped; each remaining option value is turned
// into a per-year URL with a title query parameter, fetched, and its
// second table read into a dataset tagged with the year.
package yearseries

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/net/html"

	"github.com/tsawler/statcrawl/dataset"
	"github.com/tsawler/statcrawl/fetch"
	"github.com/tsawler/statcrawl/htmltable"
)

const (
	selectorClass = "changePageForm"
	midYearMark   = "Mid-Year"
	titleParam    = "title"

	// YearColumn is the label of the column added to each per-year dataset.
	YearColumn = "Year"

	// dataTableIndex selects the table holding the ranking. The first
	// table on these pages is navigation chrome.
	dataTableIndex = 1
)

// ErrNoSelector reports a base page without the expected page-selection form.
var ErrNoSelector = errors.New("page-selection form not found")

// Fetcher retrieves all yearly editions reachable from a base link.
type Fetcher struct {
	client   *fetch.Client
	progress bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithProgress enables a progress bar over the per-year fetches.
func WithProgress(on bool) Option {
	return func(f *Fetcher) { f.progress = on }
}

// New builds a Fetcher on the given HTTP client.
func New(client *fetch.Client, opts ...Option) *Fetcher {
	f := &Fetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAllYears discovers every full-year edition of the page at
// baseLink, reads each edition's ranking table, tags it with its year,
// and concatenates the lot in enumeration order. Fetches are strictly
// sequential; the first failure aborts the whole series.
func (f *Fetcher) FetchAllYears(ctx context.Context, baseLink string) (*dataset.Dataset, error) {
	doc, err := f.client.GetHTML(ctx, baseLink)
	if err != nil {
		return nil, err
	}

	values, err := yearOptions(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", baseLink, err)
	}

	urls := make([]string, len(values))
	for i, v := range values {
		urls[i] = fmt.Sprintf("%s?%s=%s", baseLink, titleParam, v)
	}

	var bar *progressbar.ProgressBar
	if f.progress {
		bar = progressbar.Default(int64(len(urls)), "years")
	}

	parts := make([]*dataset.Dataset, 0, len(urls))
	for _, u := range urls {
		d, err := f.fetchYear(ctx, u)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
		if bar != nil {
			bar.Add(1)
		}
	}

	return dataset.Concat(parts...)
}

// fetchYear fetches one per-year URL and returns its ranking table with
// the year attached as a column.
func (f *Fetcher) fetchYear(ctx context.Context, url string) (*dataset.Dataset, error) {
	doc, err := f.client.GetHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	tbl, err := htmltable.At(doc, dataTableIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	d, err := tbl.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	year, err := YearFromURL(url)
	if err != nil {
		return nil, err
	}
	d.AddConstColumn(YearColumn, strconv.Itoa(year), dataset.KindNumeric)
	return d, nil
}

// yearOptions returns the machine values of the page-selection form's
// options, skipping mid-year variants, in document order.
func yearOptions(doc *html.Node) ([]string, error) {
	form := findByClass(doc, selectorClass)
	if form == nil {
		return nil, ErrNoSelector
	}

	var values []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "option" {
			if !strings.Contains(optionText(n), midYearMark) {
				if v, ok := attr(n, "value"); ok {
					values = append(values, v)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)
	return values, nil
}

// YearFromURL extracts the integer year from a per-year URL: the text
// after the last "=", with any half-year suffix after "-" stripped.
func YearFromURL(url string) (int, error) {
	tail := url
	if i := strings.LastIndex(url, "="); i >= 0 {
		tail = url[i+1:]
	}
	if i := strings.Index(tail, "-"); i >= 0 {
		tail = tail[:i]
	}
	year, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("no year in %q: %w", url, err)
	}
	return year, nil
}

// findByClass returns the first element whose class attribute contains
// the given token.
func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		if v, ok := attr(n, "class"); ok {
			for _, token := range strings.Fields(v) {
				if token == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func optionText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
