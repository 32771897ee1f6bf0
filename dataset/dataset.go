// Package dataset provides an in-memory tabular dataset with named,
// typed columns, built from scraped table text and serialized as CSV.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Kind is the value kind of a column.
type Kind int

const (
	// KindText stores values as raw text.
	KindText Kind = iota
	// KindNumeric marks a column whose every value parses as a number.
	KindNumeric
)

// Column describes one column of a Dataset. Identity is the label;
// labels are assumed unique within one dataset.
type Column struct {
	Label string
	Kind  Kind
}

// Dataset is an ordered sequence of rows sharing one column schema.
// Every row has exactly one value per column, stored as text; Kind
// records whether the whole column coerces to numbers.
type Dataset struct {
	Columns []Column
	Rows    [][]string
}

// SchemaError reports a row whose cell count disagrees with the column count.
type SchemaError struct {
	Row  int // 0-based row position
	Want int
	Got  int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("row %d has %d values, schema has %d columns", e.Row, e.Got, e.Want)
}

// New creates an empty dataset with text columns for the given labels.
func New(labels []string) *Dataset {
	cols := make([]Column, len(labels))
	for i, l := range labels {
		cols[i] = Column{Label: l}
	}
	return &Dataset{Columns: cols, Rows: make([][]string, 0)}
}

// Append adds one row. The row must have exactly one value per column.
func (d *Dataset) Append(row []string) error {
	if len(row) != len(d.Columns) {
		return &SchemaError{Row: len(d.Rows), Want: len(d.Columns), Got: len(row)}
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColCount returns the number of columns.
func (d *Dataset) ColCount() int {
	return len(d.Columns)
}

// Labels returns the column labels in order.
func (d *Dataset) Labels() []string {
	labels := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		labels[i] = c.Label
	}
	return labels
}

// Float returns the value at (row, col) parsed as a float64. The second
// return is false when the position is out of range or the value does
// not parse.
func (d *Dataset) Float(row, col int) (float64, bool) {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Columns) {
		return 0, false
	}
	v, err := strconv.ParseFloat(d.Rows[row][col], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CoerceNumeric infers column kinds: a column becomes KindNumeric only
// when every one of its values parses as a number (integer or float).
// A single failing value leaves the whole column as text. Columns of an
// empty dataset stay text. Failure to coerce is not an error.
func (d *Dataset) CoerceNumeric() {
	for c := range d.Columns {
		if len(d.Rows) == 0 {
			d.Columns[c].Kind = KindText
			continue
		}
		kind := KindNumeric
		for _, row := range d.Rows {
			if _, err := strconv.ParseFloat(row[c], 64); err != nil {
				kind = KindText
				break
			}
		}
		d.Columns[c].Kind = kind
	}
}

// AddConstColumn appends a new column with the same value on every row.
func (d *Dataset) AddConstColumn(label, value string, kind Kind) {
	d.Columns = append(d.Columns, Column{Label: label, Kind: kind})
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], value)
	}
}

// Concat concatenates datasets in order into one dataset. All parts
// must share the same column labels; kinds are re-inferred on the
// result. Nil and empty parts are allowed as long as labels agree.
func Concat(parts ...*Dataset) (*Dataset, error) {
	if len(parts) == 0 {
		return New(nil), nil
	}
	out := New(parts[0].Labels())
	for i, p := range parts {
		if err := sameLabels(out.Columns, p.Columns); err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		for _, row := range p.Rows {
			if err := out.Append(row); err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
		}
	}
	out.CoerceNumeric()
	return out, nil
}

func sameLabels(a, b []Column) error {
	if len(a) != len(b) {
		return fmt.Errorf("column count mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Label != b[i].Label {
			return fmt.Errorf("column %d label mismatch: %q vs %q", i, a[i].Label, b[i].Label)
		}
	}
	return nil
}

// WriteCSV writes the dataset as CSV: one header row of column labels
// followed by one line per row. When withIndex is true an unnamed
// leading column carries the 0-based row position.
func (d *Dataset) WriteCSV(w io.Writer, withIndex bool) error {
	cw := csv.NewWriter(w)

	header := d.Labels()
	if withIndex {
		header = append([]string{""}, header...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range d.Rows {
		record := row
		if withIndex {
			record = append([]string{strconv.Itoa(i)}, row...)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
