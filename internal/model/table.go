package model

import "strings"

// Column names resolved against (possibly normalized) table headers.
const (
	URLColumn      = "URL"
	CategoryColumn = "Category"
)

// Uncategorized is the sentinel label assigned when a row cannot be
// classified: missing URL, failed fetch, or empty page text.
const Uncategorized = "Uncategorized"

// Table is an in-memory tabular file: one header row plus data rows in
// input order. Rows may be ragged; Cell reads missing cells as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NormalizeHeaders trims surrounding whitespace from every header and
// uppercases it, so a column named " url " resolves as "URL". The
// normalized headers are what the output file carries.
func (t *Table) NormalizeHeaders() {
	for i, h := range t.Headers {
		t.Headers[i] = strings.ToUpper(strings.TrimSpace(h))
	}
}

// ColumnIndex returns the index of the column whose header matches name
// exactly, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when the row is shorter than
// the header row.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// SetColumn writes one value per row into the column with the given header,
// overwriting an existing column of that exact name and appending a new one
// otherwise. Short rows are padded so every row carries the column.
func (t *Table) SetColumn(name string, values []string) {
	idx := t.ColumnIndex(name)
	if idx == -1 {
		idx = len(t.Headers)
		t.Headers = append(t.Headers, name)
	}
	for i := range t.Rows {
		for len(t.Rows[i]) <= idx {
			t.Rows[i] = append(t.Rows[i], "")
		}
		if i < len(values) {
			t.Rows[i][idx] = values[i]
		}
	}
}
