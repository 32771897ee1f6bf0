// Package htmltable locates table elements in parsed HTML documents and
// reads them into datasets.
//
// A table is expected to carry its column labels in a single header row
// under <thead> and its records under <tbody>. Reading replaces the
// first cell of every body row with the row's 1-based rank, then infers
// per-column numeric kinds.
package htmltable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/statcrawl/dataset"
)

var (
	// ErrNotFound reports that the document holds fewer tables than requested.
	ErrNotFound = errors.New("table not found")
	// ErrNoHeader reports a table without a <thead> row.
	ErrNoHeader = errors.New("table has no header row")
)

// Table wraps one parsed <table> element.
type Table struct {
	node *html.Node
}

// Find returns all <table> elements in the document, in document order.
func Find(doc *html.Node) []Table {
	var tables []Table
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, Table{node: n})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

// At returns the i-th (0-based) table in the document.
func At(doc *html.Node, i int) (Table, error) {
	tables := Find(doc)
	if i < 0 || i >= len(tables) {
		return Table{}, fmt.Errorf("%w: index %d, document has %d", ErrNotFound, i, len(tables))
	}
	return tables[i], nil
}

// Read converts the table into a dataset. Column labels come from the
// element cells of the header row, taken verbatim. Each body row's
// element cells become one record, with the first value overwritten by
// the row's 1-based rank. A body row whose cell count differs from the
// column count is a schema error. Columns whose every value parses as a
// number come back numeric; all others stay text.
func (t Table) Read() (*dataset.Dataset, error) {
	headerRow := firstRow(childElement(t.node, "thead"))
	if headerRow == nil {
		return nil, ErrNoHeader
	}

	var labels []string
	for c := headerRow.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			labels = append(labels, textContent(c))
		}
	}

	d := dataset.New(labels)

	body := childElement(t.node, "tbody")
	rank := 0
	if body != nil {
		for tr := body.FirstChild; tr != nil; tr = tr.NextSibling {
			if tr.Type != html.ElementNode {
				continue
			}
			var cells []string
			for c := tr.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode {
					cells = append(cells, textContent(c))
				}
			}
			rank++
			if len(cells) != len(labels) || len(cells) == 0 {
				return nil, fmt.Errorf("body row %d: %w", rank,
					&dataset.SchemaError{Row: rank - 1, Want: len(labels), Got: len(cells)})
			}
			cells[0] = strconv.Itoa(rank)
			if err := d.Append(cells); err != nil {
				return nil, err
			}
		}
	}

	d.CoerceNumeric()
	return d, nil
}

// childElement returns the first direct child element with the given tag.
func childElement(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// firstRow returns the first <tr> element under the given section.
func firstRow(section *html.Node) *html.Node {
	return childElement(section, "tr")
}

// textContent concatenates all descendant text nodes, verbatim. No
// trimming: the cell text is whatever the markup carries.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
