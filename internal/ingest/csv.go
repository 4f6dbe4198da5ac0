package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/holtland/datalens/internal/dataset"
)

// utf8BOM is stripped before parsing; Excel-exported CSVs routinely carry it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV parses comma-separated bytes. The first record is the header;
// every column goes through per-column type inference.
func readCSV(data []byte) (*dataset.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // ragged rows are padded during column build

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	rows := records[1:]
	return columnsFromStrings(header, rows)
}

// columnsFromStrings builds an inferred table from a header plus row-major
// string cells. Short rows are padded with empty cells.
func columnsFromStrings(header []string, rows [][]string) (*dataset.Table, error) {
	t := &dataset.Table{Columns: make([]dataset.Column, len(header))}
	for c, name := range header {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if c < len(row) {
				raw[i] = row[c]
			}
		}
		t.Columns[c] = dataset.InferColumn(name, raw)
	}
	return t, nil
}
