// Package dataset provides the column-ordered, in-memory table that carries
// records between pipeline stages.
//
// A Dataset is exclusively owned by one stage at a time and is handed to the
// next stage by return value, so it performs no locking. Columns are kept in
// first-seen order; a row that lacks a column reads as null.
//
// Example usage:
//
//	ds := dataset.New()
//	ds.Append(dataset.Row{"title": "placeholder"})
//	ds.Append(rows...)
//	filled := ds.FillNull("season", "winter")
//	if err := ds.DropColumns("url", "mal_id"); err != nil {
//		var schemaErr *dataset.SchemaError
//		errors.As(err, &schemaErr)
//	}
package dataset
