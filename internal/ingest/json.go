package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/holtland/datalens/internal/dataset"
)

// readJSON parses either of the two tabular JSON orientations:
//
//	records: [{"a": 1, "b": "x"}, {"a": 2}]
//	columns: {"a": [1, 2], "b": ["x", null]}
//
// Numbers decode through json.Number so integers stay integers. Column
// order follows first appearance in the document.
func readJSON(data []byte) (*dataset.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case []any:
		return jsonRecords(data, v)
	case map[string]any:
		return jsonColumns(data, v)
	default:
		return nil, fmt.Errorf("expected an array of records or an object of columns")
	}
}

// jsonRecords builds a table from an array of record objects. Missing keys
// become nulls. Key order is recovered from the raw document text because
// decoded maps lose it.
func jsonRecords(raw []byte, records []any) (*dataset.Table, error) {
	order, err := recordKeyOrder(raw)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(order))
	cells := make([][]any, len(order))
	for i, name := range order {
		index[name] = i
		cells[i] = make([]any, len(records))
	}

	for row, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", row)
		}
		for key, val := range obj {
			c, ok := index[key]
			if !ok {
				continue
			}
			cell, err := jsonCell(val)
			if err != nil {
				return nil, fmt.Errorf("record %d, key %q: %w", row, key, err)
			}
			cells[c][row] = cell
		}
	}

	t := &dataset.Table{Columns: make([]dataset.Column, len(order))}
	for i, name := range order {
		t.Columns[i] = dataset.BuildColumn(name, cells[i])
	}
	return t, nil
}

// jsonColumns builds a table from an object of equal-length arrays.
func jsonColumns(raw []byte, obj map[string]any) (*dataset.Table, error) {
	order, err := objectKeyOrder(raw)
	if err != nil {
		return nil, err
	}

	rows := -1
	t := &dataset.Table{Columns: make([]dataset.Column, 0, len(order))}
	for _, name := range order {
		arr, ok := obj[name].([]any)
		if !ok {
			return nil, fmt.Errorf("column %q is not an array", name)
		}
		if rows == -1 {
			rows = len(arr)
		} else if len(arr) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", name, len(arr), rows)
		}
		cells := make([]any, len(arr))
		for i, val := range arr {
			cell, err := jsonCell(val)
			if err != nil {
				return nil, fmt.Errorf("column %q, index %d: %w", name, i, err)
			}
			cells[i] = cell
		}
		t.Columns = append(t.Columns, dataset.BuildColumn(name, cells))
	}
	return t, nil
}

// jsonCell converts a decoded JSON value into a scalar cell.
// Nested arrays and objects are rejected; the table model is flat.
func jsonCell(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return x, nil
	case string:
		return x, nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", x.String())
		}
		return f, nil
	default:
		return nil, fmt.Errorf("nested values are not supported")
	}
}

// recordKeyOrder walks the raw token stream of a record array and returns
// every object key in first-appearance order.
func recordKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // consume '['
		return nil, err
	}

	var order []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token() // consume '{'
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("expected a record object")
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("expected an object key")
			}
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
	}
	return order, nil
}

// objectKeyOrder returns the top-level keys of a JSON object in document order.
func objectKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected an object")
	}

	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key")
		}
		order = append(order, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return order, nil
}
