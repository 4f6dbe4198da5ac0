package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsTable() *Table {
	return &Table{Columns: []Column{
		{Name: "x", Kind: KindInt, Values: []any{int64(1), int64(2), int64(3), nil}},
		{Name: "label", Kind: KindText, Values: []any{"a", "b", "a", "b"}},
	}}
}

func TestSummarize(t *testing.T) {
	s := Summarize(statsTable())
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 2, s.Columns)
	assert.InDelta(t, 12.5, s.NullRate, 1e-9) // 1 null of 8 cells
	assert.Equal(t, 4, s.DistinctRows)
}

func TestSummarizeDistinctRows(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "a", Kind: KindInt, Values: []any{int64(1), int64(1), int64(2)}},
		{Name: "b", Kind: KindText, Values: []any{"x", "x", "y"}},
	}}
	assert.Equal(t, 2, Summarize(table).DistinctRows)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&Table{})
	assert.Equal(t, Summary{}, s)
}

func TestHistogram(t *testing.T) {
	vals := make([]any, 0, 20)
	for i := 0; i < 20; i++ {
		vals = append(vals, float64(i)) // range [0, 19]
	}
	col := Column{Name: "x", Kind: KindFloat, Values: vals}

	buckets := Histogram(&col)
	require.Len(t, buckets, HistogramBins)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 20, total)
	assert.Equal(t, 0.0, buckets[0].Low)
	assert.Equal(t, 19.0, buckets[len(buckets)-1].High)
	// The maximum lands in the last bin, not past it.
	assert.NotZero(t, buckets[len(buckets)-1].Count)
}

func TestHistogramConstantColumn(t *testing.T) {
	col := Column{Name: "x", Kind: KindInt, Values: []any{int64(5), int64(5), int64(5)}}
	buckets := Histogram(&col)
	require.Len(t, buckets, 1)
	assert.Equal(t, HistogramBucket{Low: 5, High: 5, Count: 3}, buckets[0])
}

func TestHistogramSkipsNonNumeric(t *testing.T) {
	text := Column{Name: "s", Kind: KindText, Values: []any{"a"}}
	assert.Nil(t, Histogram(&text))

	allNull := Column{Name: "n", Kind: KindInt, Values: []any{nil, nil}}
	assert.Nil(t, Histogram(&allNull))
}

func TestCorrelate(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "x", Kind: KindFloat, Values: []any{1.0, 2.0, 3.0, 4.0}},
		{Name: "y", Kind: KindFloat, Values: []any{2.0, 4.0, 6.0, 8.0}},
		{Name: "z", Kind: KindFloat, Values: []any{4.0, 3.0, 2.0, 1.0}},
		{Name: "label", Kind: KindText, Values: []any{"a", "b", "c", "d"}},
	}}

	m := Correlate(table)
	require.Equal(t, []string{"x", "y", "z"}, m.Columns)

	assert.InDelta(t, 1.0, m.Cells[0][0], 1e-9)
	assert.InDelta(t, 1.0, m.Cells[0][1], 1e-9)  // y = 2x
	assert.InDelta(t, -1.0, m.Cells[0][2], 1e-9) // z = 5 - x
	// Symmetric.
	assert.Equal(t, m.Cells[0][1], m.Cells[1][0])
}

func TestCorrelatePairwiseNulls(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "x", Kind: KindFloat, Values: []any{1.0, 2.0, nil, 4.0}},
		{Name: "y", Kind: KindFloat, Values: []any{1.0, 2.0, 3.0, 4.0}},
	}}
	m := Correlate(table)
	assert.InDelta(t, 1.0, m.Cells[0][1], 1e-9)
}

func TestCorrelateZeroVariance(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "x", Kind: KindFloat, Values: []any{1.0, 1.0, 1.0}},
		{Name: "y", Kind: KindFloat, Values: []any{1.0, 2.0, 3.0}},
	}}
	m := Correlate(table)
	assert.True(t, math.IsNaN(m.Cells[0][1]))
}
