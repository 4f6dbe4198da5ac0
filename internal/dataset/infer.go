package dataset

// infer.go builds typed columns from untyped source cells. String sources
// (CSV, spreadsheets) go through per-column type inference; typed sources
// (JSON, Parquet, SQLite) go through cell normalization plus kind widening.

import (
	"strconv"
	"strings"
)

// InferColumn builds a typed column from raw string cells.
// Empty cells become nil. The column kind is the narrowest kind that admits
// every non-empty cell, tried in order: int, float, bool, text.
func InferColumn(name string, raw []string) Column {
	kind := KindNull
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		kind = widenKind(kind, cellKind(s))
		if kind == KindText {
			break
		}
	}

	vals := make([]any, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			vals[i] = nil
			continue
		}
		switch kind {
		case KindInt:
			n, _ := strconv.ParseInt(s, 10, 64)
			vals[i] = n
		case KindFloat:
			f, _ := strconv.ParseFloat(s, 64)
			vals[i] = f
		case KindBool:
			b, _ := strconv.ParseBool(strings.ToLower(s))
			vals[i] = b
		default:
			vals[i] = s
		}
	}
	return Column{Name: name, Kind: kind, Values: vals}
}

// cellKind classifies a single non-empty trimmed cell.
func cellKind(s string) Kind {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KindInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return KindFloat
	}
	switch strings.ToLower(s) {
	case "true", "false":
		return KindBool
	}
	return KindText
}

// widenKind combines the kind observed so far with the kind of a new cell.
// Int widens to float; any other mismatch widens to text.
func widenKind(have, next Kind) Kind {
	if have == KindNull {
		return next
	}
	if have == next {
		return have
	}
	if (have == KindInt && next == KindFloat) || (have == KindFloat && next == KindInt) {
		return KindFloat
	}
	return KindText
}

// NormalizeCell coerces a dynamically-typed source value (JSON, Parquet,
// SQLite driver) into the canonical cell representation and reports its kind.
func NormalizeCell(v any) (any, Kind) {
	switch x := v.(type) {
	case nil:
		return nil, KindNull
	case bool:
		return x, KindBool
	case int:
		return int64(x), KindInt
	case int32:
		return int64(x), KindInt
	case int64:
		return x, KindInt
	case float32:
		return float64(x), KindFloat
	case float64:
		// Whole-valued floats stay floats: the source declared them so.
		return x, KindFloat
	case []byte:
		return string(x), KindText
	case string:
		return x, KindText
	default:
		return FormatCell(v), KindText
	}
}

// BuildColumn assembles a column from already-normalized cells, widening
// the kind across all non-nil values.
func BuildColumn(name string, cells []any) Column {
	kind := KindNull
	for _, v := range cells {
		if v == nil {
			continue
		}
		_, k := NormalizeCell(v)
		kind = widenKind(kind, k)
	}
	// A float column may hold int64 cells from mixed sources; unify.
	if kind == KindFloat {
		for i, v := range cells {
			if n, ok := v.(int64); ok {
				cells[i] = float64(n)
			}
		}
	}
	return Column{Name: name, Kind: kind, Values: cells}
}
