package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/animelist-etl/pkg/dataset"
	"github.com/Sternrassler/animelist-etl/pkg/jikan"
	"github.com/Sternrassler/animelist-etl/pkg/ratelimit"
)

// PlaceholderTitle is the title of the synthetic first row.
const PlaceholderTitle = "placeholder"

// Prometheus metrics for extraction.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "animelist_pages_fetched_total",
		Help: "Total number of season pages fetched and accumulated",
	})

	rowsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "animelist_rows_extracted_total",
		Help: "Total number of catalog rows accumulated by the extractor",
	})
)

// PageFetcher fetches a single 1-based season page.
type PageFetcher interface {
	SeasonPage(ctx context.Context, key jikan.SeasonKey, page int) (*jikan.SeasonPage, error)
}

// Config holds extractor configuration.
type Config struct {
	// StartYear is the first year fetched (inclusive).
	StartYear int

	// EndYear is the year at which fetching stops (exclusive).
	EndYear int

	// Seasons are fetched in this order within each year.
	Seasons []jikan.Season

	// PagesPerSeason is the fixed number of pages requested per season.
	PagesPerSeason int

	// Delay is the minimum interval between two requests.
	Delay time.Duration
}

// DefaultConfig returns the 2020-2023 catalog window.
func DefaultConfig() Config {
	return Config{
		StartYear:      2020,
		EndYear:        2024,
		Seasons:        append([]jikan.Season(nil), jikan.Seasons...),
		PagesPerSeason: 4,
		Delay:          1 * time.Second,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.EndYear <= c.StartYear {
		return fmt.Errorf("year range [%d, %d) is empty", c.StartYear, c.EndYear)
	}
	if len(c.Seasons) == 0 {
		return fmt.Errorf("at least one season is required")
	}
	for _, s := range c.Seasons {
		if _, err := jikan.ParseSeason(string(s)); err != nil {
			return err
		}
	}
	if c.PagesPerSeason <= 0 {
		return fmt.Errorf("pages_per_season must be > 0 (got %d)", c.PagesPerSeason)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be >= 0 (got %s)", c.Delay)
	}
	return nil
}

// Partitions returns every (year, season) in fetch order.
func (c Config) Partitions() []jikan.SeasonKey {
	keys := make([]jikan.SeasonKey, 0, (c.EndYear-c.StartYear)*len(c.Seasons))
	for year := c.StartYear; year < c.EndYear; year++ {
		for _, season := range c.Seasons {
			keys = append(keys, jikan.SeasonKey{Year: year, Season: season})
		}
	}
	return keys
}

// Extractor accumulates the seasonal catalog into a dataset.
type Extractor struct {
	fetcher PageFetcher
	pacer   *ratelimit.Pacer
	config  Config
	logger  zerolog.Logger
}

// New creates an extractor.
func New(fetcher PageFetcher, cfg Config) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extract config: %w", err)
	}

	logger := log.With().Str("component", "extractor").Logger()
	pacer, err := ratelimit.NewPacer(cfg.Delay, logger)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		fetcher: fetcher,
		pacer:   pacer,
		config:  cfg,
		logger:  logger,
	}, nil
}

// NewAccumulator returns a dataset holding only the placeholder row.
func NewAccumulator() *dataset.Dataset {
	ds := dataset.New()
	ds.Append(dataset.Row{"title": PlaceholderTitle})
	return ds
}

// Extract fetches every configured partition and returns the accumulated
// dataset, placeholder row first.
func (e *Extractor) Extract(ctx context.Context) (*dataset.Dataset, error) {
	start := time.Now()
	ds := NewAccumulator()

	e.logger.Info().
		Int("partitions", len(e.config.Partitions())).
		Int("pages_per_season", e.config.PagesPerSeason).
		Dur("delay", e.pacer.Delay()).
		Msg("Starting extraction")

	for _, key := range e.config.Partitions() {
		e.logger.Info().
			Int("year", key.Year).
			Str("season", string(key.Season)).
			Msg("Extracting season")

		if err := e.extractPartition(ctx, ds, key); err != nil {
			return nil, err
		}
	}

	e.logger.Info().
		Int("rows", ds.Len()-1).
		Int("columns", len(ds.Columns())).
		Dur("duration", time.Since(start)).
		Msg("Extraction complete")

	return ds, nil
}

// extractPartition fetches all pages of one season into ds.
func (e *Extractor) extractPartition(ctx context.Context, ds *dataset.Dataset, key jikan.SeasonKey) error {
	for i := 0; i < e.config.PagesPerSeason; i++ {
		pageNum := i + 1

		if err := e.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("extract %s page %d: %w", key, pageNum, err)
		}

		page, err := e.fetcher.SeasonPage(ctx, key, pageNum)
		e.pacer.Done()
		if err != nil {
			return fmt.Errorf("extract %s page %d: %w", key, pageNum, err)
		}

		added := appendPage(ds, page)
		seasonFilled, yearFilled := backfill(ds, key)

		pagesFetchedTotal.Inc()
		rowsExtractedTotal.Add(float64(added))

		e.logger.Debug().
			Str("season", key.String()).
			Int("page", pageNum).
			Int("rows", added).
			Int("season_filled", seasonFilled).
			Int("year_filled", yearFilled).
			Int("accumulated", ds.Len()-1).
			Msg("Page accumulated")
	}
	return nil
}

// appendPage flattens every entry of page onto the end of ds.
func appendPage(ds *dataset.Dataset, page *jikan.SeasonPage) int {
	ds.AddColumns(jikan.Columns...)
	for i := range page.Data {
		ds.Append(page.Data[i].Flatten())
	}
	return len(page.Data)
}

// backfill stamps the partition's season and year onto every row of the
// buffer still missing them. Rows filled by earlier partitions keep their
// values.
func backfill(ds *dataset.Dataset, key jikan.SeasonKey) (int, int) {
	seasonFilled := ds.FillNull("season", string(key.Season))
	yearFilled := ds.FillNull("year", int64(key.Year))
	return seasonFilled, yearFilled
}
