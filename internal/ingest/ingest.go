// Package ingest turns uploaded file bytes into dataset.Table values.
// Dispatch happens purely on the declared file extension; there is no
// content sniffing and no fallback when the declared kind does not match
// the bytes; the underlying reader's failure surfaces as a *FormatError.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/holtland/datalens/internal/dataset"
)

// FormatError wraps a parser failure for a declared file kind.
type FormatError struct {
	Ext string // declared extension, without the dot
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parse %s file: %v", e.Ext, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Read parses file bytes according to the extension of filename and returns
// a table with canonicalized column names. Supported kinds: .csv, .xlsx,
// .xls, .json, .parquet. Anything else is a *FormatError.
func Read(filename string, data []byte) (*dataset.Table, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var (
		t   *dataset.Table
		err error
	)
	switch ext {
	case "csv":
		t, err = readCSV(data)
	case "xlsx", "xls":
		t, err = readSpreadsheet(data)
	case "json":
		t, err = readJSON(data)
	case "parquet":
		t, err = readParquet(data)
	default:
		return nil, &FormatError{Ext: ext, Err: fmt.Errorf("unsupported file type")}
	}
	if err != nil {
		return nil, &FormatError{Ext: ext, Err: err}
	}

	dataset.CanonicalizeColumns(t)
	return t, nil
}
