// Package load writes cleaned records to the relational sink with
// full-table-replace semantics.
//
// A load creates the schema when the dialect has schemas, drops the target
// table, recreates it from CleanedRecord and inserts the rows in chunks.
// Every chunk commits in its own transaction, so a failure leaves the
// earlier chunks in place. Rerunning with the same input converges to the
// same table contents.
package load

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sternrassler/animelist-etl/pkg/transform"
)

// DefaultChunkSize is the number of rows per insert transaction.
const DefaultChunkSize = 1000

var (
	rowsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "animelist_rows_loaded_total",
		Help: "Total number of rows committed to the sink",
	})

	loadChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animelist_load_chunks_total",
		Help: "Total insert chunks by result",
	}, []string{"result"})
)

// Target identifies the sink table.
type Target struct {
	Schema string
	Table  string
}

// DefaultTarget returns the production table.
func DefaultTarget() Target {
	return Target{
		Schema: "transformed_data",
		Table:  "jikan_animelist_2020-2023",
	}
}

// Loader replaces the target table with a new snapshot.
type Loader struct {
	db        *gorm.DB
	target    Target
	chunkSize int
	logger    zerolog.Logger
}

// New creates a loader. A chunkSize of zero selects DefaultChunkSize.
func New(db *gorm.DB, target Target, chunkSize int) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if target.Table == "" {
		return nil, fmt.Errorf("target table is required")
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("chunk size must not be negative, got %d", chunkSize)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	return &Loader{
		db:        db,
		target:    target,
		chunkSize: chunkSize,
		logger:    log.With().Str("component", "loader").Logger(),
	}, nil
}

// supportsSchemas reports whether the dialect has named schemas.
func (l *Loader) supportsSchemas() bool {
	return l.db.Dialector.Name() == DriverPostgres
}

// TableName returns the table reference used in statements.
func (l *Loader) TableName() string {
	if l.target.Schema != "" && l.supportsSchemas() {
		return l.target.Schema + "." + l.target.Table
	}
	return l.target.Table
}

// Load replaces the target table with records.
func (l *Loader) Load(ctx context.Context, records []transform.CleanedRecord) error {
	start := time.Now()
	table := l.TableName()
	db := l.db.WithContext(ctx)

	if l.target.Schema != "" && l.supportsSchemas() {
		if err := db.Exec("CREATE SCHEMA IF NOT EXISTS ?", clause.Table{Name: l.target.Schema}).Error; err != nil {
			return l.fail(PhaseSchema, -1, err)
		}
	}

	if err := db.Exec("DROP TABLE IF EXISTS ?", clause.Table{Name: table}).Error; err != nil {
		return l.fail(PhaseDrop, -1, err)
	}

	if err := db.Table(table).Migrator().CreateTable(&transform.CleanedRecord{}); err != nil {
		return l.fail(PhaseCreate, -1, err)
	}

	chunks := 0
	for offset := 0; offset < len(records); offset += l.chunkSize {
		end := offset + l.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[offset:end]

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Table(table).Create(&chunk).Error
		})
		if err != nil {
			loadChunksTotal.WithLabelValues("error").Inc()
			return l.fail(PhaseInsert, chunks, err)
		}

		loadChunksTotal.WithLabelValues("committed").Inc()
		rowsLoadedTotal.Add(float64(len(chunk)))
		chunks++

		l.logger.Debug().
			Int("chunk", chunks-1).
			Int("rows", len(chunk)).
			Msg("Chunk committed")
	}

	l.logger.Info().
		Str("table", table).
		Int("rows", len(records)).
		Int("chunks", chunks).
		Dur("duration", time.Since(start)).
		Msg("Load complete")

	return nil
}

func (l *Loader) fail(phase Phase, chunk int, err error) error {
	werr := &SinkWriteError{
		Phase: phase,
		Table: l.TableName(),
		Chunk: chunk,
		Err:   err,
	}
	l.logger.Error().Err(err).Str("phase", string(phase)).Int("chunk", chunk).Msg("Load failed")
	return werr
}
