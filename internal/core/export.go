package core

// export.go streams a filtered relation as UTF-8 comma-separated text with
// a header row, the download offered as <relation>_filtered.csv.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/holtland/datalens/internal/dataset"
	"github.com/holtland/datalens/internal/explore"
)

// ExportFileName returns the download name for a relation's filtered CSV.
func ExportFileName(relation string) string {
	return relation + "_filtered.csv"
}

// Export retrieves a relation, applies the filter, and writes the result
// as CSV: header row first, then one record per kept row. Null cells
// export as empty fields.
func (s *Service) Export(ctx context.Context, relation string, spec explore.FilterSpec, w io.Writer) error {
	t, err := s.FilteredTable(ctx, relation, spec)
	if err != nil {
		return err
	}
	return WriteCSV(t, w)
}

// WriteCSV writes a table as comma-separated text with a header row.
func WriteCSV(t *dataset.Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rows := t.NumRows()
	record := make([]string, len(t.Columns))
	for i := 0; i < rows; i++ {
		for c := range t.Columns {
			record[c] = dataset.FormatCell(t.Columns[c].Values[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
