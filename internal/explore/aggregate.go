package explore

// aggregate.go implements the single group-by aggregation that follows the
// filter stage. Output rows are sorted ascending by group key with the null
// group first, so identical input always yields identical output.

import (
	"fmt"
	"sort"

	"github.com/holtland/datalens/internal/dataset"
)

// AggFunc enumerates the supported reduction functions.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
	AggMax   AggFunc = "max"
	AggMin   AggFunc = "min"
)

// ParseAggFunc validates a user-supplied function name.
func ParseAggFunc(s string) (AggFunc, error) {
	switch AggFunc(s) {
	case AggSum, AggMean, AggCount, AggMax, AggMin:
		return AggFunc(s), nil
	}
	return "", fmt.Errorf("unknown aggregation function %q", s)
}

// AggregateSpec names a group-by column, a numeric target column, and a
// reduction function.
type AggregateSpec struct {
	GroupBy string  `json:"group_by"`
	Target  string  `json:"target"`
	Func    AggFunc `json:"func"`
}

// Aggregate groups the (already filtered) table by spec.GroupBy and reduces
// spec.Target with spec.Func. The result has one row per distinct group-by
// value (null forms its own group) and two columns: the group key and the
// reduction output.
//
// A non-numeric target is a silent no-op (ok=false, no error), matching the
// dashboard behavior of simply not rendering a grouped result. Unknown
// columns are errors. An empty input yields an empty two-column table.
//
// count counts non-null target cells per group; sum, mean, max, and min
// ignore nulls. Groups whose target cells are all null reduce to null.
// GroupBy may equal Target; each row still contributes once.
func Aggregate(t *dataset.Table, spec AggregateSpec) (*dataset.Table, bool, error) {
	groupCol, ok := t.Column(spec.GroupBy)
	if !ok {
		return nil, false, fmt.Errorf("aggregate: unknown group-by column %q", spec.GroupBy)
	}
	targetCol, ok := t.Column(spec.Target)
	if !ok {
		return nil, false, fmt.Errorf("aggregate: unknown target column %q", spec.Target)
	}
	if !targetCol.Kind.Numeric() {
		return nil, false, nil
	}

	type group struct {
		key    any
		sum    float64
		min    float64
		max    float64
		count  int64 // non-null target cells
		seen   bool  // any numeric target cell observed
		isNull bool  // the null group
	}

	groups := make(map[string]*group)
	for i, key := range groupCol.Values {
		mapKey := groupMapKey(key)
		g := groups[mapKey]
		if g == nil {
			g = &group{key: key, isNull: key == nil}
			groups[mapKey] = g
		}
		f, isNum := dataset.AsFloat(targetCol.Values[i])
		if !isNum {
			continue
		}
		g.count++
		if !g.seen {
			g.sum, g.min, g.max, g.seen = f, f, f, true
		} else {
			g.sum += f
			if f < g.min {
				g.min = f
			}
			if f > g.max {
				g.max = f
			}
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	// Deterministic output order: ascending group key, null group first.
	sort.Slice(ordered, func(i, j int) bool {
		return lessGroupKey(ordered[i].key, ordered[j].key)
	})

	keys := make([]any, len(ordered))
	vals := make([]any, len(ordered))
	for i, g := range ordered {
		keys[i] = g.key
		vals[i] = reduce(g.sum, g.min, g.max, g.count, g.seen, spec.Func)
	}

	out := &dataset.Table{Columns: []dataset.Column{
		{Name: spec.GroupBy, Kind: groupCol.Kind, Values: keys},
		dataset.BuildColumn(string(spec.Func) + "_" + spec.Target, vals),
	}}
	return out, true, nil
}

// reduce produces the output cell for one group.
func reduce(sum, min, max float64, count int64, seen bool, fn AggFunc) any {
	if fn == AggCount {
		return count
	}
	if !seen {
		return nil // all target cells in this group were null
	}
	switch fn {
	case AggSum:
		return sum
	case AggMean:
		return sum / float64(count)
	case AggMax:
		return max
	case AggMin:
		return min
	default:
		return nil
	}
}

// groupMapKey builds the equality key for grouping. The kind prefix keeps
// distinct raw values distinct even when they format identically.
func groupMapKey(v any) string {
	if v == nil {
		return "\x00null"
	}
	switch v.(type) {
	case bool:
		return "b:" + dataset.FormatCell(v)
	case int64:
		return "n:" + dataset.FormatCell(v)
	case float64:
		return "n:" + dataset.FormatCell(v)
	default:
		return "s:" + dataset.FormatCell(v)
	}
}

// lessGroupKey orders group keys for output: null first, then numeric
// keys ascending, booleans false-then-true, and strings lexicographically.
func lessGroupKey(a, b any) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	fa, oka := dataset.AsFloat(a)
	fb, okb := dataset.AsFloat(b)
	if oka && okb {
		if fa != fb {
			return fa < fb
		}
		return dataset.FormatCell(a) < dataset.FormatCell(b)
	}
	ba, isBoolA := a.(bool)
	bb, isBoolB := b.(bool)
	if isBoolA && isBoolB {
		return !ba && bb
	}
	return dataset.FormatCell(a) < dataset.FormatCell(b)
}
