package ingest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/holtland/datalens/internal/dataset"
)

// parquetReadBatch is the number of rows pulled per ReadRows call.
const parquetReadBatch = 1024

// readParquet parses a columnar-binary file with a flat schema. Leaf
// columns map positionally to table columns; nested schemas are rejected.
func readParquet(data []byte) (*dataset.Table, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	fields := f.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return nil, fmt.Errorf("nested column %q is not supported", field.Name())
		}
		names[i] = field.Name()
	}

	cells := make([][]any, len(fields))
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, cells); err != nil {
			return nil, err
		}
	}

	t := &dataset.Table{Columns: make([]dataset.Column, len(fields))}
	for i, name := range names {
		t.Columns[i] = dataset.BuildColumn(name, cells[i])
	}
	return t, nil
}

// readRowGroup appends every row of one row group onto the per-column
// cell slices.
func readRowGroup(rg parquet.RowGroup, cells [][]any) error {
	rows := rg.Rows()
	defer rows.Close()

	buf := make([]parquet.Row, parquetReadBatch)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			if len(row) != len(cells) {
				return fmt.Errorf("row has %d values, want %d", len(row), len(cells))
			}
			for _, v := range row {
				cell, convErr := parquetCell(v)
				if convErr != nil {
					return convErr
				}
				cells[v.Column()] = append(cells[v.Column()], cell)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// parquetCell converts one parquet value into a scalar cell.
func parquetCell(v parquet.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean(), nil
	case parquet.Int32:
		return int64(v.Int32()), nil
	case parquet.Int64:
		return v.Int64(), nil
	case parquet.Float:
		return float64(v.Float()), nil
	case parquet.Double:
		return v.Double(), nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unsupported parquet value kind %s", v.Kind())
	}
}
