package htmltable

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/tsawler/statcrawl/dataset"
)

func parse(t *testing.T, doc string) *html.Node {
	t.Helper()
	n, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse() failed: %v", err)
	}
	return n
}

const rankedTable = `<html><body>
<table>
<thead><tr><th>Rank</th><th>City</th><th>Index</th></tr></thead>
<tbody>
<tr><td>9</td><td>Zurich</td><td>120.5</td></tr>
<tr><td>1</td><td>Oslo</td><td>110.0</td></tr>
</tbody>
</table>
</body></html>`

func TestRead_RanksAndKinds(t *testing.T) {
	doc := parse(t, rankedTable)

	tbl, err := At(doc, 0)
	if err != nil {
		t.Fatalf("At() failed: %v", err)
	}
	d, err := tbl.Read()
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	if got := d.Labels(); len(got) != 3 || got[0] != "Rank" || got[1] != "City" || got[2] != "Index" {
		t.Fatalf("Labels() = %v, want [Rank City Index]", got)
	}
	if d.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", d.RowCount())
	}

	// Original rank text (9, 1) is discarded; position wins.
	if d.Rows[0][0] != "1" || d.Rows[1][0] != "2" {
		t.Errorf("ranks = %q, %q, want 1, 2", d.Rows[0][0], d.Rows[1][0])
	}
	if d.Rows[0][1] != "Zurich" || d.Rows[1][1] != "Oslo" {
		t.Errorf("cities = %q, %q", d.Rows[0][1], d.Rows[1][1])
	}

	if d.Columns[0].Kind != dataset.KindNumeric {
		t.Error("Rank should be numeric")
	}
	if d.Columns[1].Kind != dataset.KindText {
		t.Error("City should be text")
	}
	if d.Columns[2].Kind != dataset.KindNumeric {
		t.Error("Index should be numeric")
	}
	if v, ok := d.Float(0, 2); !ok || v != 120.5 {
		t.Errorf("Float(0,2) = %v, %v, want 120.5, true", v, ok)
	}
}

func TestRead_SkipsTextNodesBetweenCells(t *testing.T) {
	// Whitespace text nodes between elements must not become cells.
	doc := parse(t, `<table>
	<thead>
		<tr> <th>Rank</th> <th>City</th> </tr>
	</thead>
	<tbody>
		<tr> <td>1</td> <td>Bern</td> </tr>
	</tbody>
</table>`)

	tbl, err := At(doc, 0)
	if err != nil {
		t.Fatalf("At() failed: %v", err)
	}
	d, err := tbl.Read()
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if d.ColCount() != 2 {
		t.Errorf("ColCount() = %d, want 2", d.ColCount())
	}
	if d.RowCount() != 1 {
		t.Errorf("RowCount() = %d, want 1", d.RowCount())
	}
}

func TestRead_CellTextIsVerbatim(t *testing.T) {
	doc := parse(t, `<table><thead><tr><th>Rank</th><th>City</th></tr></thead>
<tbody><tr><td>1</td><td><a href="/x">Zur</a>ich</td></tr></tbody></table>`)

	tbl, _ := At(doc, 0)
	d, err := tbl.Read()
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if d.Rows[0][1] != "Zurich" {
		t.Errorf("nested cell text = %q, want Zurich", d.Rows[0][1])
	}
}

func TestRead_SchemaMismatch(t *testing.T) {
	doc := parse(t, `<table><thead><tr><th>Rank</th><th>City</th></tr></thead>
<tbody><tr><td>1</td><td>Oslo</td><td>extra</td></tr></tbody></table>`)

	tbl, _ := At(doc, 0)
	_, err := tbl.Read()
	if err == nil {
		t.Fatal("Read() expected schema error")
	}
	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Read() error = %T, want *dataset.SchemaError", err)
	}
	if se.Want != 2 || se.Got != 3 {
		t.Errorf("SchemaError want %d got %d, expected 2 and 3", se.Want, se.Got)
	}
}

func TestRead_NoHeader(t *testing.T) {
	doc := parse(t, `<table><tbody><tr><td>1</td></tr></tbody></table>`)

	tbl, _ := At(doc, 0)
	if _, err := tbl.Read(); !errors.Is(err, ErrNoHeader) {
		t.Errorf("Read() error = %v, want ErrNoHeader", err)
	}
}

func TestRead_EmptyBody(t *testing.T) {
	doc := parse(t, `<table><thead><tr><th>Rank</th></tr></thead><tbody></tbody></table>`)

	tbl, _ := At(doc, 0)
	d, err := tbl.Read()
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if d.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", d.RowCount())
	}
}

func TestFind_DocumentOrder(t *testing.T) {
	doc := parse(t, `<body>
<table id="nav"><thead><tr><th>a</th></tr></thead><tbody></tbody></table>
<table id="data"><thead><tr><th>b</th></tr></thead><tbody></tbody></table>
</body>`)

	tables := Find(doc)
	if len(tables) != 2 {
		t.Fatalf("Find() = %d tables, want 2", len(tables))
	}

	second, err := At(doc, 1)
	if err != nil {
		t.Fatalf("At(1) failed: %v", err)
	}
	d, err := second.Read()
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if got := d.Labels()[0]; got != "b" {
		t.Errorf("second table label = %q, want b", got)
	}
}

func TestAt_OutOfRange(t *testing.T) {
	doc := parse(t, `<body><table><thead><tr><th>a</th></tr></thead></table></body>`)

	if _, err := At(doc, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("At(1) error = %v, want ErrNotFound", err)
	}
}
