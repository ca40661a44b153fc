package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/animelist-etl/pkg/jikan"
	"github.com/Sternrassler/animelist-etl/pkg/load"
)

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.base_url is required"))
	}
	if c.Source.UserAgent == "" {
		errs = append(errs, errors.New("source.user_agent is required"))
	}
	if c.Source.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("source.timeout_seconds must be positive, got %d", c.Source.TimeoutSeconds))
	}

	if c.Extract.EndYear <= c.Extract.StartYear {
		errs = append(errs, fmt.Errorf("extract year range [%d, %d) is empty", c.Extract.StartYear, c.Extract.EndYear))
	}
	if len(c.Extract.Seasons) == 0 {
		errs = append(errs, errors.New("extract.seasons must not be empty"))
	}
	for _, name := range c.Extract.Seasons {
		if _, err := jikan.ParseSeason(name); err != nil {
			errs = append(errs, fmt.Errorf("extract.seasons: %w", err))
		}
	}
	if c.Extract.PagesPerSeason <= 0 {
		errs = append(errs, fmt.Errorf("extract.pages_per_season must be positive, got %d", c.Extract.PagesPerSeason))
	}
	if c.Extract.DelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("extract.delay_seconds must not be negative, got %v", c.Extract.DelaySeconds))
	}

	switch c.Sink.Driver {
	case load.DriverPostgres, load.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("sink.driver %q is not supported", c.Sink.Driver))
	}
	if c.Sink.DSN == "" {
		errs = append(errs, errors.New("sink.dsn is required"))
	}
	if c.Sink.Table == "" {
		errs = append(errs, errors.New("sink.table is required"))
	}
	if c.Sink.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("sink.chunk_size must not be negative, got %d", c.Sink.ChunkSize))
	}

	switch c.Handoff.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Handoff.RedisAddr == "" {
			errs = append(errs, errors.New("handoff.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("handoff.backend %q is not supported", c.Handoff.Backend))
	}
	if c.Handoff.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("handoff.ttl_seconds must not be negative, got %d", c.Handoff.TTLSeconds))
	}

	if c.Orchestrator.Retries < 0 {
		errs = append(errs, fmt.Errorf("orchestrator.retries must not be negative, got %d", c.Orchestrator.Retries))
	}
	if c.Orchestrator.RetryDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("orchestrator.retry_delay_seconds must not be negative, got %d", c.Orchestrator.RetryDelaySeconds))
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "auto", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not supported", c.Logging.Format))
	}

	return errors.Join(errs...)
}
