package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrNotFound indicates no live value exists under the key.
	ErrNotFound = errors.New("handoff value not found")

	// ErrInvalidEntry indicates the stored value is corrupted.
	ErrInvalidEntry = errors.New("invalid handoff entry")
)

var (
	handoffBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "animelist_handoff_bytes",
		Help: "Size in bytes of the last value pushed per name",
	}, []string{"key"})

	handoffErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animelist_handoff_errors_total",
		Help: "Total number of failed handoff operations",
	}, []string{"operation"}) // "push", "pull"
)

// Exchange publishes and retrieves task outputs.
type Exchange interface {
	// Push stores v as JSON under key, replacing any earlier value.
	Push(ctx context.Context, key Key, v any) error

	// Pull decodes the value under key into v. Returns ErrNotFound when
	// nothing live is stored.
	Pull(ctx context.Context, key Key, v any) error
}

// Memory is an in-process exchange. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
}

// NewMemory creates an in-process exchange. A ttl of zero keeps values for
// the life of the process.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
		ttl:     ttl,
	}
}

// Push implements Exchange.
func (m *Memory) Push(ctx context.Context, key Key, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry, err := newEntry(v, m.ttl)
	if err != nil {
		handoffErrors.WithLabelValues("push").Inc()
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	m.mu.Lock()
	m.entries[key.String()] = entry
	m.mu.Unlock()

	handoffBytes.WithLabelValues(key.Name).Set(float64(len(entry.Data)))
	return nil
}

// Pull implements Exchange.
func (m *Memory) Pull(ctx context.Context, key Key, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	entry, ok := m.entries[key.String()]
	m.mu.RUnlock()

	if !ok || entry.IsExpired() {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err := json.Unmarshal(entry.Data, v); err != nil {
		handoffErrors.WithLabelValues("pull").Inc()
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, key, err)
	}
	return nil
}
