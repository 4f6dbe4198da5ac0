// Package explore implements the filter and group/aggregate pipeline that
// sits between a loaded relation and the table, chart, and export surfaces.
// It operates purely on dataset.Table values; it never touches the store.
package explore

import (
	"fmt"

	"github.com/holtland/datalens/internal/dataset"
)

// FilterSpec is a single-column inclusion predicate. Numeric columns use
// the inclusive [Min, Max] range; every other kind uses set membership over
// the column's distinct values. Exactly one column may be filtered at a
// time; there is no AND/OR composition.
type FilterSpec struct {
	Column string `json:"column"`

	// Numeric range bounds. A nil bound defaults to the column's observed
	// minimum or maximum.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Values is the permitted set for non-numeric columns, matched against
	// dataset.FormatCell of each cell.
	Values []string `json:"values,omitempty"`

	// IncludeNull admits null cells on the categorical path. Nulls are
	// otherwise excluded even when Values is empty.
	IncludeNull bool `json:"include_null,omitempty"`
}

// Filter applies the spec and returns the kept rows as a new table.
// An empty Column leaves the table unchanged. An unknown column is an error.
//
// Numeric path: keep rows with min <= value <= max, bounds inclusive,
// defaulting to the observed extremes. A column with no numeric values
// (entirely null) has no observable range and yields zero rows.
//
// Categorical path: keep rows whose formatted value is in the selected set;
// an empty set keeps nothing; nulls only pass with IncludeNull.
func Filter(t *dataset.Table, spec FilterSpec) (*dataset.Table, error) {
	if spec.Column == "" {
		return t, nil
	}
	col, ok := t.Column(spec.Column)
	if !ok {
		return nil, fmt.Errorf("filter: unknown column %q", spec.Column)
	}

	if col.Kind.Numeric() {
		return filterNumeric(t, col, spec), nil
	}
	return filterValues(t, col, spec), nil
}

func filterNumeric(t *dataset.Table, col *dataset.Column, spec FilterSpec) *dataset.Table {
	lo, hi, ok := observedRange(col)
	if !ok {
		// Entirely-null column: no defined range, empty result.
		return t.Select(nil)
	}
	if spec.Min != nil {
		lo = *spec.Min
	}
	if spec.Max != nil {
		hi = *spec.Max
	}

	var keep []int
	for i, v := range col.Values {
		f, isNum := dataset.AsFloat(v)
		if isNum && f >= lo && f <= hi {
			keep = append(keep, i)
		}
	}
	return t.Select(keep)
}

func filterValues(t *dataset.Table, col *dataset.Column, spec FilterSpec) *dataset.Table {
	allowed := make(map[string]bool, len(spec.Values))
	for _, v := range spec.Values {
		allowed[v] = true
	}

	var keep []int
	for i, v := range col.Values {
		if v == nil {
			if spec.IncludeNull {
				keep = append(keep, i)
			}
			continue
		}
		if allowed[dataset.FormatCell(v)] {
			keep = append(keep, i)
		}
	}
	return t.Select(keep)
}

// observedRange returns the minimum and maximum numeric value of a column.
// ok is false when the column holds no numeric values.
func observedRange(col *dataset.Column) (lo, hi float64, ok bool) {
	for _, v := range col.Values {
		f, isNum := dataset.AsFloat(v)
		if !isNum {
			continue
		}
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi, ok
}

// DistinctValues returns the distinct non-null formatted values of a
// column in first-seen order. This is the selectable set offered by the
// categorical filter control.
func DistinctValues(col *dataset.Column) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		s := dataset.FormatCell(v)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Range exposes the observed numeric range of a column for the slider
// control. ok is false for non-numeric or entirely-null columns.
func Range(col *dataset.Column) (lo, hi float64, ok bool) {
	if !col.Kind.Numeric() {
		return 0, 0, false
	}
	return observedRange(col)
}
