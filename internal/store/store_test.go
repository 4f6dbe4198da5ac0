package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holtland/datalens/internal/dataset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTable() *dataset.Table {
	return &dataset.Table{Columns: []dataset.Column{
		{Name: "id", Kind: dataset.KindInt, Values: []any{int64(1), int64(2), int64(3)}},
		{Name: "score", Kind: dataset.KindFloat, Values: []any{1.5, nil, 3.0}},
		{Name: "active", Kind: dataset.KindBool, Values: []any{true, false, nil}},
		{Name: "label", Kind: dataset.KindText, Values: []any{"a", "b", ""}},
	}}
}

func TestReplaceAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	in := testTable()

	require.NoError(t, s.Replace(ctx, "sample", in))

	out, err := s.Load(ctx, "sample")
	require.NoError(t, err)

	require.Equal(t, in.ColumnNames(), out.ColumnNames())
	require.Equal(t, in.NumRows(), out.NumRows())
	for i := range in.Columns {
		assert.Equal(t, in.Columns[i].Kind, out.Columns[i].Kind, "column %s", in.Columns[i].Name)
		assert.Equal(t, in.Columns[i].Values, out.Columns[i].Values, "column %s", in.Columns[i].Name)
	}
}

func TestReplaceOverwritesDifferentShape(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, "sample", testTable()))

	second := &dataset.Table{Columns: []dataset.Column{
		{Name: "only", Kind: dataset.KindText, Values: []any{"x"}},
	}}
	require.NoError(t, s.Replace(ctx, "sample", second))

	out, err := s.Load(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, out.ColumnNames())
	assert.Equal(t, 1, out.NumRows())
}

func TestReplaceEmptyTableRejected(t *testing.T) {
	s := openTestStore(t)
	err := s.Replace(context.Background(), "empty", &dataset.Table{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")
}

func TestReplaceZeroRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	in := &dataset.Table{Columns: []dataset.Column{
		{Name: "a", Kind: dataset.KindInt, Values: []any{}},
	}}
	require.NoError(t, s.Replace(ctx, "empty_rows", in))

	out, err := s.Load(ctx, "empty_rows")
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, []string{"a"}, out.ColumnNames())
}

func TestReplaceWideTableBatching(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// 20 columns x 250 rows forces several insert batches.
	cols := make([]dataset.Column, 20)
	for c := range cols {
		vals := make([]any, 250)
		for i := range vals {
			vals[i] = int64(c*1000 + i)
		}
		cols[c] = dataset.Column{Name: "c" + string(rune('a'+c)), Kind: dataset.KindInt, Values: vals}
	}
	in := &dataset.Table{Columns: cols}

	require.NoError(t, s.Replace(ctx, "wide", in))
	out, err := s.Load(ctx, "wide")
	require.NoError(t, err)
	assert.Equal(t, 250, out.NumRows())
	assert.Equal(t, in.Columns[19].Values, out.Columns[19].Values)
}

func TestLoadMissingRelation(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDrop(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Replace(ctx, "zebra", testTable()))
	require.NoError(t, s.Replace(ctx, "apple", testTable()))

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "zebra"}, names)

	require.NoError(t, s.Drop(ctx, "zebra"))
	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple"}, names)

	assert.ErrorIs(t, s.Drop(ctx, "zebra"), ErrNotFound)
}

func TestValidateRelationName(t *testing.T) {
	valid := []string{"a", "table_1", "_private", "Sales2024"}
	for _, name := range valid {
		assert.NoError(t, ValidateRelationName(name), name)
	}

	invalid := []string{
		"",
		"1starts_with_digit",
		"has space",
		"has-dash",
		"semi;colon",
		`quo"te`,
		"drop table x; --",
		"waytoolong_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateRelationName(name), ErrBadName, name)
	}
}

func TestReplaceRejectsBadName(t *testing.T) {
	s := openTestStore(t)
	err := s.Replace(context.Background(), "bad name", testTable())
	assert.ErrorIs(t, err, ErrBadName)
}
