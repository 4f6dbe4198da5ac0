package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferColumn(t *testing.T) {
	tests := []struct {
		name     string
		raw      []string
		wantKind Kind
		want     []any
	}{
		{
			name:     "integers",
			raw:      []string{"1", "2", "-3"},
			wantKind: KindInt,
			want:     []any{int64(1), int64(2), int64(-3)},
		},
		{
			name:     "int widens to float",
			raw:      []string{"1", "2.5"},
			wantKind: KindFloat,
			want:     []any{float64(1), float64(2.5)},
		},
		{
			name:     "booleans",
			raw:      []string{"true", "False"},
			wantKind: KindBool,
			want:     []any{true, false},
		},
		{
			name:     "mixed falls back to text",
			raw:      []string{"1", "hello"},
			wantKind: KindText,
			want:     []any{"1", "hello"},
		},
		{
			name:     "empty cells become null",
			raw:      []string{"1", "", "3"},
			wantKind: KindInt,
			want:     []any{int64(1), nil, int64(3)},
		},
		{
			name:     "all empty",
			raw:      []string{"", ""},
			wantKind: KindNull,
			want:     []any{nil, nil},
		},
		{
			name:     "whitespace trimmed before typing",
			raw:      []string{" 7 ", "8"},
			wantKind: KindInt,
			want:     []any{int64(7), int64(8)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := InferColumn("c", tt.raw)
			assert.Equal(t, tt.wantKind, col.Kind)
			assert.Equal(t, tt.want, col.Values)
		})
	}
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		want     any
		wantKind Kind
	}{
		{"nil", nil, nil, KindNull},
		{"bool", true, true, KindBool},
		{"int", int(5), int64(5), KindInt},
		{"int32", int32(5), int64(5), KindInt},
		{"int64", int64(5), int64(5), KindInt},
		{"float32", float32(1.5), float64(1.5), KindFloat},
		{"whole float stays float", float64(2), float64(2), KindFloat},
		{"bytes", []byte("x"), "x", KindText},
		{"string", "x", "x", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind := NormalizeCell(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestBuildColumnUnifiesMixedNumerics(t *testing.T) {
	col := BuildColumn("c", []any{int64(1), float64(2.5), nil})
	require.Equal(t, KindFloat, col.Kind)
	assert.Equal(t, []any{float64(1), float64(2.5), nil}, col.Values)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "true", FormatCell(true))
	assert.Equal(t, "42", FormatCell(int64(42)))
	assert.Equal(t, "2.5", FormatCell(float64(2.5)))
	assert.Equal(t, "hi", FormatCell("hi"))
}
