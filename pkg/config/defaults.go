package config

import (
	"github.com/Sternrassler/animelist-etl/pkg/jikan"
	"github.com/Sternrassler/animelist-etl/pkg/load"
)

// Handoff backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	target := load.DefaultTarget()
	seasons := make([]string, len(jikan.Seasons))
	for i, s := range jikan.Seasons {
		seasons[i] = string(s)
	}

	return Config{
		Source: Source{
			BaseURL:        jikan.DefaultBaseURL,
			UserAgent:      "animelist-etl/0.1.0",
			TimeoutSeconds: 30,
		},
		Extract: Extract{
			StartYear:      2020,
			EndYear:        2024,
			Seasons:        seasons,
			PagesPerSeason: 4,
			DelaySeconds:   1,
		},
		// The DSN carries no password; supply it through ANIMELIST_SINK_DSN,
		// the config file or PGPASSWORD.
		Sink: Sink{
			Driver:    load.DriverPostgres,
			DSN:       "host=localhost user=airflow dbname=airflow port=5432 sslmode=disable",
			Schema:    target.Schema,
			Table:     target.Table,
			ChunkSize: load.DefaultChunkSize,
		},
		Handoff: Handoff{
			Backend:    BackendMemory,
			RedisAddr:  "localhost:6379",
			TTLSeconds: 24 * 60 * 60,
		},
		Orchestrator: Orchestrator{
			DagID:             "animelist_dag",
			Retries:           1,
			RetryDelaySeconds: 10,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}
