// Package datasource locates and loads the POS CSV exports for a run.
package datasource

import (
	"fmt"
	"strings"
)

// Table is a loaded CSV: a header and string rows. Cells keep their raw
// text; parsing into numbers and timestamps happens at the stage that
// consumes the column.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table and its column index. Duplicate column names keep
// the first occurrence.
func NewTable(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, seen := index[c]; !seen {
			index[c] = i
		}
	}
	return &Table{Columns: columns, Rows: rows, index: index}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the exact column name exists.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the exact column name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// AnyColumn returns the position of the first matching name. Exports vary
// slightly between POS versions ("Action" vs "Action Type").
func (t *Table) AnyColumn(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := t.ColumnIndex(n); ok {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the trimmed cell at (row, col), or "" when the row is too
// short for the column.
func (t *Table) Cell(row int, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// CellByName returns the trimmed cell at (row, column name).
func (t *Table) CellByName(row int, name string) string {
	i, ok := t.ColumnIndex(name)
	if !ok {
		return ""
	}
	return t.Cell(row, i)
}

// RequireColumns verifies all names exist, returning an error naming the
// first missing one.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return fmt.Errorf("missing required column %q", n)
		}
	}
	return nil
}
