// Package dataset defines the in-memory tabular model shared by ingest,
// persistence, and exploration: a Table of uniformly-sized named columns
// whose cells are nil, bool, int64, float64, or string.
package dataset

import (
	"fmt"
	"strconv"
)

// Kind classifies the values held by a column.
type Kind int

const (
	KindNull Kind = iota // every cell is nil
	KindBool
	KindInt
	KindFloat
	KindText
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Numeric reports whether the kind participates in range filters,
// aggregation targets, histograms, and correlation.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column is an ordered sequence of cells of a single inferred kind.
// Cells are nil, bool, int64, float64, or string.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Table is an ordered sequence of named columns with a uniform row count.
// Column names are unique after canonicalization.
type Table struct {
	Columns []Column
}

// NumRows returns the row count (uniform across columns).
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Row materializes row i as a slice in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Values[i]
	}
	return row
}

// Select returns a new table containing only the rows whose indices are
// listed, in the given order. Columns keep their names and kinds.
func (t *Table) Select(indices []int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for c := range t.Columns {
		src := &t.Columns[c]
		vals := make([]any, len(indices))
		for i, idx := range indices {
			vals[i] = src.Values[idx]
		}
		out.Columns[c] = Column{Name: src.Name, Kind: src.Kind, Values: vals}
	}
	return out
}

// Validate checks the table invariants: uniform row count and unique
// column names.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	rows := -1
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}

// AsFloat converts a numeric cell to float64.
// Returns false for nil cells and non-numeric values.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// FormatCell renders a cell for display, CSV export, and categorical
// filter matching. Nil renders as the empty string.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", v)
	}
}
