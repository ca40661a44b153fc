package dataset

import (
	"fmt"
	"sort"
)

// Row is a single record keyed by column name. A nil value is null.
type Row map[string]any

// Dataset is an ordered collection of rows with a tracked column order.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the column is part of the dataset.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Row returns the i-th row. The returned map is owned by the dataset.
func (d *Dataset) Row(i int) Row {
	return d.rows[i]
}

// Get returns the cell value, nil when the row lacks the column.
func (d *Dataset) Get(i int, column string) any {
	return d.rows[i][column]
}

// Set writes a cell, registering the column if it is new.
func (d *Dataset) Set(i int, column string, value any) {
	d.AddColumns(column)
	d.rows[i][column] = value
}

// AddColumns registers columns in the given order, ignoring known ones.
func (d *Dataset) AddColumns(names ...string) {
	for _, name := range names {
		if _, ok := d.index[name]; ok {
			continue
		}
		d.index[name] = len(d.columns)
		d.columns = append(d.columns, name)
	}
}

// Append adds rows to the end of the dataset. Columns not yet registered are
// added in sorted order so the resulting column order is deterministic.
func (d *Dataset) Append(rows ...Row) {
	for _, row := range rows {
		var unknown []string
		for key := range row {
			if !d.HasColumn(key) {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		d.AddColumns(unknown...)
		if row == nil {
			row = Row{}
		}
		d.rows = append(d.rows, row)
	}
}

// FillNull sets column to value on every row where it is null and returns
// the number of cells written. Rows that already carry a value are untouched.
func (d *Dataset) FillNull(column string, value any) int {
	d.AddColumns(column)
	filled := 0
	for _, row := range d.rows {
		if row[column] == nil {
			row[column] = value
			filled++
		}
	}
	return filled
}

// DropColumns removes the named columns from every row. Either all columns
// are dropped or, when any is missing, none are and a SchemaError is returned.
func (d *Dataset) DropColumns(names ...string) error {
	var missing []string
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !d.HasColumn(name) {
			missing = append(missing, name)
			continue
		}
		drop[name] = struct{}{}
	}
	if len(missing) > 0 {
		return missingColumnsError(missing)
	}

	kept := d.columns[:0]
	for _, col := range d.columns {
		if _, ok := drop[col]; !ok {
			kept = append(kept, col)
		}
	}
	d.columns = kept
	d.reindex()

	for _, row := range d.rows {
		for name := range drop {
			delete(row, name)
		}
	}
	return nil
}

// DropRow removes the i-th row, preserving the order of the others.
func (d *Dataset) DropRow(i int) error {
	if i < 0 || i >= len(d.rows) {
		return fmt.Errorf("drop row %d: out of range (len %d)", i, len(d.rows))
	}
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	return nil
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.columns))
	for i, col := range d.columns {
		d.index[col] = i
	}
}
