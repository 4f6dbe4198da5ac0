package dataset

// canonical.go normalizes user-supplied column names so that every source
// format yields the same identifiers: trimmed, lower-cased, spaces replaced
// with underscores. Canonicalization is idempotent.

import (
	"strconv"
	"strings"
)

// CanonicalName normalizes a column name: trim surrounding whitespace,
// lower-case, and replace interior spaces with underscores.
// Applying it twice equals applying it once.
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "_")
}

// CanonicalizeColumns rewrites every column name with CanonicalName and
// de-duplicates collisions by appending _2, _3, ... in column order.
// Empty names become column_<position>.
func CanonicalizeColumns(t *Table) {
	seen := make(map[string]int, len(t.Columns))
	for i := range t.Columns {
		name := CanonicalName(t.Columns[i].Name)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n+1)
		}
		seen[name]++
		t.Columns[i].Name = name
	}
}
