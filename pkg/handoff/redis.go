package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a run's values stay in Redis.
const DefaultTTL = 24 * time.Hour

// Redis is an exchange backed by Redis, shared by separate processes.
type Redis struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedis creates a Redis exchange. A ttl of zero selects DefaultTTL.
func NewRedis(redisClient *redis.Client, ttl time.Duration) *Redis {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Push implements Exchange.
func (r *Redis) Push(ctx context.Context, key Key, v any) error {
	entry, err := newEntry(v, r.ttl)
	if err != nil {
		handoffErrors.WithLabelValues("push").Inc()
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		handoffErrors.WithLabelValues("push").Inc()
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := r.redis.Set(ctx, key.String(), data, r.ttl).Err(); err != nil {
		handoffErrors.WithLabelValues("push").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	handoffBytes.WithLabelValues(key.Name).Set(float64(len(entry.Data)))
	return nil
}

// Pull implements Exchange.
func (r *Redis) Pull(ctx context.Context, key Key, v any) error {
	data, err := r.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		handoffErrors.WithLabelValues("pull").Inc()
		return fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		handoffErrors.WithLabelValues("pull").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if entry.IsExpired() {
		_ = r.Delete(ctx, key)
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	if err := json.Unmarshal(entry.Data, v); err != nil {
		handoffErrors.WithLabelValues("pull").Inc()
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, key, err)
	}
	return nil
}

// Delete removes a value.
func (r *Redis) Delete(ctx context.Context, key Key) error {
	if err := r.redis.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
