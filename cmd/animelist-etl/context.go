package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/animelist-etl/pkg/config"
	"github.com/Sternrassler/animelist-etl/pkg/handoff"
	"github.com/Sternrassler/animelist-etl/pkg/logging"
	"github.com/Sternrassler/animelist-etl/pkg/metrics"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	runIDFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, runIDFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		runIDFlag:    runIDFlag,
	}
}

// ensureConfig loads the configuration once and sets up logging to logOut.
func (c *commandContext) ensureConfig(logOut io.Writer) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}

		logging.Setup(logging.Config{
			Level:  logging.LogLevel(cfg.Logging.Level),
			Format: logging.Format(cfg.Logging.Format),
			Output: logOut,
		})
		c.config = cfg
	})
	return c.config, c.configErr
}

// runID returns the --run-id flag, or a new id when generate is set.
func (c *commandContext) runID(generate bool) (string, error) {
	if c.runIDFlag != nil {
		if id := strings.TrimSpace(*c.runIDFlag); id != "" {
			return id, nil
		}
	}
	if !generate {
		return "", fmt.Errorf("--run-id is required")
	}
	return uuid.NewString(), nil
}

// exchange opens the configured handoff exchange. Single tasks run in
// separate processes and therefore need a shared backend.
func (c *commandContext) exchange(ctx context.Context, shared bool) (handoff.Exchange, func(), error) {
	cfg := c.config
	switch cfg.Handoff.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Handoff.RedisAddr,
			DB:   cfg.Handoff.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Handoff.RedisAddr, err)
		}
		return handoff.NewRedis(client, cfg.HandoffTTL()), func() { client.Close() }, nil
	default:
		if shared {
			return nil, nil, fmt.Errorf("single task commands need handoff.backend = %q", config.BackendRedis)
		}
		return handoff.NewMemory(cfg.HandoffTTL()), func() {}, nil
	}
}

// startMetrics serves metrics when configured and returns the stop function.
func (c *commandContext) startMetrics() (func(), error) {
	if c.config.Metrics.Addr == "" {
		return func() {}, nil
	}
	server, err := metrics.Start(c.config.Metrics.Addr)
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}, nil
}
