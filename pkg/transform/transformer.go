// Package transform turns the accumulated catalog into cleaned relational
// records.
//
// The steps run in a fixed order because each one relies on the shape left
// by the previous: drop unneeded columns, impute episodes and score with
// their medians, remove the placeholder row, join genre and studio names
// into strings, drop the list columns, project onto CleanedRecord.
// Duplicate titles from overlapping windows are kept.
package transform

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/animelist-etl/pkg/dataset"
)

var rowsTransformedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "animelist_rows_transformed_total",
	Help: "Total number of cleaned rows produced by the transformer",
})

// Transformer applies the cleaning steps.
type Transformer struct {
	logger zerolog.Logger
}

// New creates a transformer.
func New() *Transformer {
	return &Transformer{
		logger: log.With().Str("component", "transformer").Logger(),
	}
}

// Clean runs every in-place step on ds. On error ds is left in whatever
// state the failing step found it and must be discarded.
func (t *Transformer) Clean(ds *dataset.Dataset) error {
	if err := DropColumns(ds, DropList...); err != nil {
		return err
	}

	fills, err := ImputeMedian(ds, ImputedColumns...)
	if err != nil {
		return err
	}
	for _, col := range ImputedColumns {
		if v, ok := fills[col]; ok {
			t.logger.Debug().Str("column", col).Interface("median", v).Msg("Imputed nulls with median")
		} else {
			t.logger.Warn().Str("column", col).Msg("No numeric values to impute from, nulls are kept")
		}
	}

	if err := DropPlaceholder(ds); err != nil {
		return err
	}

	sources := make([]string, 0, len(ListFields))
	for _, field := range ListFields {
		if err := ExtractNames(ds, field.Source, field.Target); err != nil {
			return err
		}
		sources = append(sources, field.Source)
	}

	return DropColumns(ds, sources...)
}

// Transform takes ownership of ds, cleans it and returns the records in
// the dataset's order.
func (t *Transformer) Transform(ds *dataset.Dataset) ([]CleanedRecord, error) {
	start := time.Now()
	inputRows := ds.Len()

	if err := t.Clean(ds); err != nil {
		t.logger.Error().Err(err).Msg("Transformation failed")
		return nil, err
	}

	records, err := Project(ds)
	if err != nil {
		t.logger.Error().Err(err).Msg("Projection failed")
		return nil, err
	}

	rowsTransformedTotal.Add(float64(len(records)))
	t.logger.Info().
		Int("input_rows", inputRows).
		Int("rows", len(records)).
		Strs("columns", ds.Columns()).
		Dur("duration", time.Since(start)).
		Msg("Transformation complete")

	return records, nil
}
