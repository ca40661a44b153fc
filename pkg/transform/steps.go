package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sternrassler/animelist-etl/pkg/dataset"
	"github.com/Sternrassler/animelist-etl/pkg/extract"
)

// DropColumns removes the named columns in place. A missing column is a
// SchemaError and leaves the dataset unchanged.
func DropColumns(ds *dataset.Dataset, names ...string) error {
	if err := ds.DropColumns(names...); err != nil {
		return fmt.Errorf("drop columns: %w", err)
	}
	return nil
}

// ImputeMedian fills nulls of each column with that column's median over
// its non-null values. Every median is computed before any cell is written.
// Columns with integer values and an integral median are filled with an
// int64. A column without any numeric value is left as is. Returns the fill
// value per imputed column. In place.
func ImputeMedian(ds *dataset.Dataset, columns ...string) (map[string]any, error) {
	fills := make(map[string]any, len(columns))
	for _, col := range columns {
		if !ds.HasColumn(col) {
			return nil, &dataset.SchemaError{Path: col, Reason: "column to impute is not present"}
		}
		stats := ds.Stats(col)
		if stats.Count == 0 {
			continue
		}
		if stats.Integral && stats.Median == math.Trunc(stats.Median) {
			fills[col] = int64(stats.Median)
		} else {
			fills[col] = stats.Median
		}
	}

	for _, col := range columns {
		if v, ok := fills[col]; ok {
			ds.FillNull(col, v)
		}
	}
	return fills, nil
}

// DropPlaceholder removes the synthetic first row. In place.
func DropPlaceholder(ds *dataset.Dataset) error {
	if ds.Len() == 0 || ds.Get(0, "title") != extract.PlaceholderTitle {
		return &dataset.SchemaError{Path: "title", Reason: "first row is not the placeholder"}
	}
	return ds.DropRow(0)
}

// ExtractNames writes the joined element names of source into target for
// every row. In place.
func ExtractNames(ds *dataset.Dataset, source, target string) error {
	if !ds.HasColumn(source) {
		return &dataset.SchemaError{Path: source, Reason: "list column is not present"}
	}
	ds.AddColumns(target)
	for i := 0; i < ds.Len(); i++ {
		ds.Set(i, target, JoinNames(ds.Get(i, source)))
	}
	return nil
}

// JoinNames joins the "name" attribute of each list element with ", ".
// Elements that are not objects or carry no non-empty string name are
// skipped; a null or non-list value yields "". Pure.
func JoinNames(value any) string {
	var names []string
	collect := func(elem map[string]any) {
		if name, ok := elem["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}

	switch list := value.(type) {
	case []any:
		for _, elem := range list {
			if obj, ok := elem.(map[string]any); ok {
				collect(obj)
			}
		}
	case []map[string]any:
		for _, obj := range list {
			collect(obj)
		}
	}
	return strings.Join(names, NameSeparator)
}

// Project converts every row into a CleanedRecord. Pure.
func Project(ds *dataset.Dataset) ([]CleanedRecord, error) {
	for _, col := range CleanedColumns {
		if !ds.HasColumn(col) {
			return nil, &dataset.SchemaError{Path: col, Reason: "cleaned column is not present"}
		}
	}

	records := make([]CleanedRecord, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		rec, err := projectRow(ds.Row(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func projectRow(row dataset.Row) (CleanedRecord, error) {
	var rec CleanedRecord
	var err error

	if rec.Title, err = stringCell(row, "title"); err != nil {
		return rec, err
	}
	if rec.Episodes, err = nullableNumberCell(row, "episodes"); err != nil {
		return rec, err
	}
	if rec.Score, err = nullableNumberCell(row, "score"); err != nil {
		return rec, err
	}
	if rec.GenreExtracted, err = stringCell(row, "genre_extracted"); err != nil {
		return rec, err
	}
	if rec.StudioExtracted, err = stringCell(row, "studio_extracted"); err != nil {
		return rec, err
	}
	if rec.Season, err = stringCell(row, "season"); err != nil {
		return rec, err
	}

	year, err := numberCell(row, "year")
	if err != nil {
		return rec, err
	}
	if year != math.Trunc(year) {
		return rec, &dataset.SchemaError{Path: "year", Reason: fmt.Sprintf("year %v is not an integer", year)}
	}
	rec.Year = int64(year)

	return rec, nil
}

func stringCell(row dataset.Row, col string) (string, error) {
	s, ok := row[col].(string)
	if !ok {
		return "", &dataset.SchemaError{Path: col, Reason: fmt.Sprintf("want string, got %T", row[col])}
	}
	return s, nil
}

func numberCell(row dataset.Row, col string) (float64, error) {
	f, ok := dataset.ToFloat(row[col])
	if !ok {
		return 0, &dataset.SchemaError{Path: col, Reason: fmt.Sprintf("want number, got %T", row[col])}
	}
	return f, nil
}

// nullableNumberCell returns nil for a null cell. Any other non-number is a
// schema error.
func nullableNumberCell(row dataset.Row, col string) (*float64, error) {
	if row[col] == nil {
		return nil, nil
	}
	f, ok := dataset.ToFloat(row[col])
	if !ok {
		return nil, &dataset.SchemaError{Path: col, Reason: fmt.Sprintf("want number, got %T", row[col])}
	}
	return &f, nil
}
