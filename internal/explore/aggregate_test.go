package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holtland/datalens/internal/dataset"
)

func groupedInput() *dataset.Table {
	return &dataset.Table{Columns: []dataset.Column{
		{Name: "g", Kind: dataset.KindText, Values: []any{"a", "b", "a", "b", "a"}},
		{Name: "v", Kind: dataset.KindFloat, Values: []any{1.0, 5.0, 3.0, nil, nil}},
	}}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		fn   AggFunc
		want []any // values for groups a, b in output order
	}{
		{AggSum, []any{4.0, 5.0}},
		{AggMean, []any{2.0, 5.0}},
		{AggCount, []any{int64(2), int64(1)}},
		{AggMax, []any{3.0, 5.0}},
		{AggMin, []any{1.0, 5.0}},
	}
	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			out, ok, err := Aggregate(groupedInput(), AggregateSpec{GroupBy: "g", Target: "v", Func: tt.fn})
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, 2, out.NumColumns())
			assert.Equal(t, "g", out.Columns[0].Name)
			assert.Equal(t, string(tt.fn)+"_v", out.Columns[1].Name)
			assert.Equal(t, []any{"a", "b"}, out.Columns[0].Values)
			assert.Equal(t, tt.want, out.Columns[1].Values)
		})
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	table := &dataset.Table{Columns: []dataset.Column{
		{Name: "g", Kind: dataset.KindText, Values: []any{"c", nil, "a", "b", nil}},
		{Name: "v", Kind: dataset.KindInt, Values: []any{int64(1), int64(2), int64(3), int64(4), int64(5)}},
	}}
	out, ok, err := Aggregate(table, AggregateSpec{GroupBy: "g", Target: "v", Func: AggCount})
	require.NoError(t, err)
	require.True(t, ok)
	// Null group first, then ascending keys.
	assert.Equal(t, []any{nil, "a", "b", "c"}, out.Columns[0].Values)
	assert.Equal(t, []any{int64(2), int64(1), int64(1), int64(1)}, out.Columns[1].Values)
}

func TestAggregateNumericKeyOrder(t *testing.T) {
	table := &dataset.Table{Columns: []dataset.Column{
		{Name: "g", Kind: dataset.KindInt, Values: []any{int64(10), int64(2), int64(10)}},
		{Name: "v", Kind: dataset.KindInt, Values: []any{int64(1), int64(1), int64(1)}},
	}}
	out, ok, err := Aggregate(table, AggregateSpec{GroupBy: "g", Target: "v", Func: AggSum})
	require.NoError(t, err)
	require.True(t, ok)
	// Numeric ascending, not lexicographic ("10" < "2").
	assert.Equal(t, []any{int64(2), int64(10)}, out.Columns[0].Values)
}

func TestAggregateAllNullGroup(t *testing.T) {
	table := &dataset.Table{Columns: []dataset.Column{
		{Name: "g", Kind: dataset.KindText, Values: []any{"a", "b"}},
		{Name: "v", Kind: dataset.KindFloat, Values: []any{nil, 2.0}},
	}}

	out, ok, err := Aggregate(table, AggregateSpec{GroupBy: "g", Target: "v", Func: AggSum})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{nil, 2.0}, out.Columns[1].Values)

	out, ok, err = Aggregate(table, AggregateSpec{GroupBy: "g", Target: "v", Func: AggCount})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int64(0), int64(1)}, out.Columns[1].Values)
}

func TestAggregateNonNumericTargetIsNoOp(t *testing.T) {
	table := &dataset.Table{Columns: []dataset.Column{
		{Name: "g", Kind: dataset.KindText, Values: []any{"a"}},
		{Name: "s", Kind: dataset.KindText, Values: []any{"x"}},
	}}
	out, ok, err := Aggregate(table, AggregateSpec{GroupBy: "g", Target: "s", Func: AggSum})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestAggregateUnknownColumns(t *testing.T) {
	_, _, err := Aggregate(groupedInput(), AggregateSpec{GroupBy: "nope", Target: "v", Func: AggSum})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown group-by column")

	_, _, err = Aggregate(groupedInput(), AggregateSpec{GroupBy: "g", Target: "nope", Func: AggSum})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target column")
}

func TestAggregateGroupByEqualsTarget(t *testing.T) {
	table := &dataset.Table{Columns: []dataset.Column{
		{Name: "v", Kind: dataset.KindInt, Values: []any{int64(1), int64(1), int64(2)}},
	}}
	out, ok, err := Aggregate(table, AggregateSpec{GroupBy: "v", Target: "v", Func: AggSum})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2)}, out.Columns[0].Values)
	// Each row contributes once: 1+1=2 and 2.
	assert.Equal(t, []any{2.0, 2.0}, out.Columns[1].Values)
}

func TestAggregateEmptyInput(t *testing.T) {
	table := &dataset.Table{Columns: []dataset.Column{
		{Name: "g", Kind: dataset.KindText, Values: []any{}},
		{Name: "v", Kind: dataset.KindInt, Values: []any{}},
	}}
	out, ok, err := Aggregate(table, AggregateSpec{GroupBy: "g", Target: "v", Func: AggSum})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, 2, out.NumColumns())
}

func TestParseAggFunc(t *testing.T) {
	for _, s := range []string{"sum", "mean", "count", "max", "min"} {
		fn, err := ParseAggFunc(s)
		require.NoError(t, err)
		assert.Equal(t, AggFunc(s), fn)
	}
	_, err := ParseAggFunc("median")
	assert.Error(t, err)
}
