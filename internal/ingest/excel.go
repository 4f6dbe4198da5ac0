package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/holtland/datalens/internal/dataset"
)

// readSpreadsheet parses an OOXML workbook (.xlsx). The first sheet is
// read, its first row is the header, and cells go through the same type
// inference as CSV. Legacy BIFF (.xls) workbooks are not understood by the
// reader and fail here, which the dispatch layer reports as a FormatError.
func readSpreadsheet(data []byte) (*dataset.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	return columnsFromStrings(rows[0], rows[1:])
}
