// Package config loads the pipeline configuration from a TOML file and
// ANIMELIST_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Sternrassler/animelist-etl/pkg/dag"
	"github.com/Sternrassler/animelist-etl/pkg/extract"
	"github.com/Sternrassler/animelist-etl/pkg/jikan"
	"github.com/Sternrassler/animelist-etl/pkg/load"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "animelist.toml"

// Source configures the Jikan API client.
type Source struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Extract configures the query windows and pacing.
type Extract struct {
	StartYear      int      `toml:"start_year"`
	EndYear        int      `toml:"end_year"`
	Seasons        []string `toml:"seasons"`
	PagesPerSeason int      `toml:"pages_per_season"`
	DelaySeconds   float64  `toml:"delay_seconds"`
}

// Sink configures the relational target.
type Sink struct {
	Driver    string `toml:"driver"`
	DSN       string `toml:"dsn"`
	Schema    string `toml:"schema"`
	Table     string `toml:"table"`
	ChunkSize int    `toml:"chunk_size"`
}

// Handoff configures the exchange between tasks.
type Handoff struct {
	Backend    string `toml:"backend"`
	RedisAddr  string `toml:"redis_addr"`
	RedisDB    int    `toml:"redis_db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// Orchestrator configures the task runner.
type Orchestrator struct {
	DagID             string `toml:"dag_id"`
	Retries           int    `toml:"retries"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Metrics configures the Prometheus endpoint. An empty Addr disables it.
type Metrics struct {
	Addr string `toml:"addr"`
}

// Config encapsulates all configuration values.
//
// Sections:
//   - Source: Jikan base URL, user agent and request timeout
//   - Extract: year range, seasons, pages per season, request delay
//   - Sink: driver, DSN and target table
//   - Handoff: memory or Redis exchange between tasks
//   - Orchestrator: retry policy
//   - Logging: level and format
//   - Metrics: Prometheus listen address
type Config struct {
	Source       Source       `toml:"source"`
	Extract      Extract      `toml:"extract"`
	Sink         Sink         `toml:"sink"`
	Handoff      Handoff      `toml:"handoff"`
	Orchestrator Orchestrator `toml:"orchestrator"`
	Logging      Logging      `toml:"logging"`
	Metrics      Metrics      `toml:"metrics"`
}

// Load reads path, or DefaultPath when path is empty, applies environment
// overrides and validates the result. A missing file yields the defaults.
// It returns the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve config path: %w", err)
	}

	exists := true
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func (c *Config) applyEnv() error {
	c.Source.BaseURL = getEnv("ANIMELIST_BASE_URL", c.Source.BaseURL)
	c.Source.UserAgent = getEnv("ANIMELIST_USER_AGENT", c.Source.UserAgent)
	c.Sink.Driver = getEnv("ANIMELIST_SINK_DRIVER", c.Sink.Driver)
	c.Sink.DSN = getEnv("ANIMELIST_SINK_DSN", c.Sink.DSN)
	c.Handoff.Backend = getEnv("ANIMELIST_HANDOFF_BACKEND", c.Handoff.Backend)
	c.Handoff.RedisAddr = getEnv("ANIMELIST_REDIS_ADDR", c.Handoff.RedisAddr)
	c.Logging.Level = getEnv("ANIMELIST_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("ANIMELIST_LOG_FORMAT", c.Logging.Format)
	c.Metrics.Addr = getEnv("ANIMELIST_METRICS_ADDR", c.Metrics.Addr)

	var err error
	if c.Extract.StartYear, err = getEnvInt("ANIMELIST_START_YEAR", c.Extract.StartYear); err != nil {
		return err
	}
	if c.Extract.EndYear, err = getEnvInt("ANIMELIST_END_YEAR", c.Extract.EndYear); err != nil {
		return err
	}
	if c.Extract.PagesPerSeason, err = getEnvInt("ANIMELIST_PAGES_PER_SEASON", c.Extract.PagesPerSeason); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() {
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	c.Sink.Driver = strings.ToLower(strings.TrimSpace(c.Sink.Driver))
	c.Handoff.Backend = strings.ToLower(strings.TrimSpace(c.Handoff.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	for i, season := range c.Extract.Seasons {
		c.Extract.Seasons[i] = strings.ToLower(strings.TrimSpace(season))
	}
}

// JikanConfig returns the API client configuration.
func (c *Config) JikanConfig() jikan.Config {
	cfg := jikan.DefaultConfig(c.Source.UserAgent)
	cfg.BaseURL = c.Source.BaseURL
	cfg.Timeout = time.Duration(c.Source.TimeoutSeconds) * time.Second
	return cfg
}

// ExtractConfig returns the extractor configuration. Seasons must have
// passed Validate.
func (c *Config) ExtractConfig() extract.Config {
	seasons := make([]jikan.Season, 0, len(c.Extract.Seasons))
	for _, name := range c.Extract.Seasons {
		if season, err := jikan.ParseSeason(name); err == nil {
			seasons = append(seasons, season)
		}
	}
	return extract.Config{
		StartYear:      c.Extract.StartYear,
		EndYear:        c.Extract.EndYear,
		Seasons:        seasons,
		PagesPerSeason: c.Extract.PagesPerSeason,
		Delay:          time.Duration(c.Extract.DelaySeconds * float64(time.Second)),
	}
}

// Target returns the sink table.
func (c *Config) Target() load.Target {
	return load.Target{Schema: c.Sink.Schema, Table: c.Sink.Table}
}

// DAGConfig returns the retry policy.
func (c *Config) DAGConfig() dag.Config {
	return dag.Config{
		Retries:    c.Orchestrator.Retries,
		RetryDelay: time.Duration(c.Orchestrator.RetryDelaySeconds) * time.Second,
	}
}

// HandoffTTL returns how long exchanged values live.
func (c *Config) HandoffTTL() time.Duration {
	return time.Duration(c.Handoff.TTLSeconds) * time.Second
}
