// Package ratelimit enforces a delay before every outgoing request so a
// sequential crawler stays under the source's published rate limit.
//
// The delay is counted from the moment the previous request completed
// (see Pacer.Done), so slow responses do not shorten the pause. Before the
// first request, or when Done was never called, the full delay applies.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for request pacing.
var (
	pacerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "animelist_pacer_wait_seconds",
		Help:    "Time spent waiting for the request pacer before a request",
		Buckets: []float64{0, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	pacerThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "animelist_pacer_throttles_total",
		Help: "Total number of requests delayed by the pacer",
	})
)

// Pacer gates requests so that at least Delay passes between the end of one
// request and the start of the next. A Pacer is not safe for concurrent
// use; the extractor drives it from a single goroutine.
type Pacer struct {
	delay  time.Duration
	last   time.Time
	logger zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with the given minimum interval.
func NewPacer(delay time.Duration, logger zerolog.Logger) (*Pacer, error) {
	if delay < 0 {
		return nil, fmt.Errorf("delay must be >= 0 (got %s)", delay)
	}
	return &Pacer{
		delay:  delay,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}, nil
}

// Delay returns the configured minimum interval.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Wait blocks until Delay has elapsed since the previous request completed.
// It returns the context error if ctx ends first.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wait := p.delay
	if !p.last.IsZero() {
		wait = p.delay - p.now().Sub(p.last)
	}

	if wait > 0 {
		pacerThrottlesTotal.Inc()
		p.logger.Debug().
			Dur("wait", wait).
			Msg("Pacing request")
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
	} else {
		wait = 0
	}

	pacerWaitSeconds.Observe(wait.Seconds())
	return nil
}

// Done records that the request admitted by the last Wait has completed,
// successfully or not.
func (p *Pacer) Done() {
	p.last = p.now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
