package dataset

// stats.go computes the summary panel figures: row counts, null rates,
// distinct rows, fixed-bin histograms for numeric columns, and the pairwise
// Pearson correlation matrix.

import (
	"math"
	"strings"
)

// HistogramBins is the fixed bin count used for every numeric column.
const HistogramBins = 10

// Summary holds the headline statistics for a table.
type Summary struct {
	Rows         int     `json:"rows"`
	Columns      int     `json:"columns"`
	NullRate     float64 `json:"null_rate"` // percentage of nil cells, 0-100
	DistinctRows int     `json:"distinct_rows"`
}

// Summarize computes the summary statistics for a table.
func Summarize(t *Table) Summary {
	rows := t.NumRows()
	s := Summary{Rows: rows, Columns: t.NumColumns()}
	if rows == 0 || len(t.Columns) == 0 {
		return s
	}

	nulls := 0
	for _, c := range t.Columns {
		for _, v := range c.Values {
			if v == nil {
				nulls++
			}
		}
	}
	s.NullRate = 100 * float64(nulls) / float64(rows*len(t.Columns))

	seen := make(map[string]bool, rows)
	var b strings.Builder
	for i := 0; i < rows; i++ {
		b.Reset()
		for c := range t.Columns {
			b.WriteString(FormatCell(t.Columns[c].Values[i]))
			b.WriteByte(0x1f) // unit separator, cannot appear via FormatCell
		}
		seen[b.String()] = true
	}
	s.DistinctRows = len(seen)
	return s
}

// HistogramBucket is one bin of a numeric histogram.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram buckets the non-null values of a numeric column into
// HistogramBins equal-width bins spanning the observed range.
// Returns nil for non-numeric or entirely-null columns. A constant column
// yields a single bucket holding every value.
func Histogram(c *Column) []HistogramBucket {
	if !c.Kind.Numeric() {
		return nil
	}
	var vals []float64
	for _, v := range c.Values {
		if f, ok := AsFloat(v); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return nil
	}

	lo, hi := vals[0], vals[0]
	for _, f := range vals[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	if lo == hi {
		return []HistogramBucket{{Low: lo, High: hi, Count: len(vals)}}
	}

	width := (hi - lo) / HistogramBins
	buckets := make([]HistogramBucket, HistogramBins)
	for i := range buckets {
		buckets[i].Low = lo + float64(i)*width
		buckets[i].High = lo + float64(i+1)*width
	}
	buckets[HistogramBins-1].High = hi
	for _, f := range vals {
		idx := int((f - lo) / width)
		if idx >= HistogramBins {
			idx = HistogramBins - 1 // max value lands in the last bin
		}
		buckets[idx].Count++
	}
	return buckets
}

// CorrelationMatrix holds pairwise Pearson correlations for the numeric
// columns of a table. Cells[i][j] is the correlation between Columns[i]
// and Columns[j]; NaN marks pairs without enough overlapping data.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Cells   [][]float64 `json:"cells"`
}

// Correlate computes the pairwise Pearson correlation over all numeric
// columns. Each pair uses only the rows where both cells are non-null.
func Correlate(t *Table) CorrelationMatrix {
	var numeric []*Column
	for i := range t.Columns {
		if t.Columns[i].Kind.Numeric() {
			numeric = append(numeric, &t.Columns[i])
		}
	}

	m := CorrelationMatrix{
		Columns: make([]string, len(numeric)),
		Cells:   make([][]float64, len(numeric)),
	}
	for i, c := range numeric {
		m.Columns[i] = c.Name
		m.Cells[i] = make([]float64, len(numeric))
	}
	for i := range numeric {
		m.Cells[i][i] = 1
		for j := i + 1; j < len(numeric); j++ {
			r := pearson(numeric[i].Values, numeric[j].Values)
			m.Cells[i][j] = r
			m.Cells[j][i] = r
		}
	}
	return m
}

// pearson computes the correlation coefficient over rows where both cells
// are numeric. Returns NaN when fewer than two such rows exist or when a
// side has zero variance.
func pearson(xs, ys []any) float64 {
	var xv, yv []float64
	for i := range xs {
		x, okx := AsFloat(xs[i])
		y, oky := AsFloat(ys[i])
		if okx && oky {
			xv = append(xv, x)
			yv = append(yv, y)
		}
	}
	n := float64(len(xv))
	if n < 2 {
		return math.NaN()
	}

	var sx, sy float64
	for i := range xv {
		sx += xv[i]
		sy += yv[i]
	}
	mx, my := sx/n, sy/n

	var cov, varx, vary float64
	for i := range xv {
		dx, dy := xv[i]-mx, yv[i]-my
		cov += dx * dy
		varx += dx * dx
		vary += dy * dy
	}
	if varx == 0 || vary == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varx*vary)
}
