package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// wireDataset is the JSON form used to hand a dataset between processes.
type wireDataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON encodes the column order and the rows.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	rows := d.rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(wireDataset{Columns: d.columns, Rows: rows})
}

// UnmarshalJSON restores a dataset. Integer literals decode to int64 and all
// other numbers to float64, at any nesting depth.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var wire wireDataset
	if err := dec.Decode(&wire); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	restored := New()
	restored.AddColumns(wire.Columns...)
	for _, row := range wire.Rows {
		for key, value := range row {
			v, err := normalizeNumbers(value)
			if err != nil {
				return &SchemaError{Path: key, Reason: "invalid number", Err: err}
			}
			row[key] = v
		}
		restored.Append(row)
	}

	*d = *restored
	return nil
}

func normalizeNumbers(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if i, err := t.Int64(); err == nil {
				return i, nil
			}
		}
		return t.Float64()
	case []any:
		for i, elem := range t {
			n, err := normalizeNumbers(elem)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	case map[string]any:
		for k, elem := range t {
			n, err := normalizeNumbers(elem)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
