package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeClock advances only when the pacer sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newFakePacer(t *testing.T, delay time.Duration) (*Pacer, *fakeClock) {
	t.Helper()
	p, err := NewPacer(delay, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPacer() error = %v", err)
	}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	p.now = clock.Now
	p.sleep = clock.Sleep
	return p, clock
}

func TestNewPacer_NegativeDelay(t *testing.T) {
	if _, err := NewPacer(-time.Second, zerolog.Nop()); err == nil {
		t.Error("expected error for negative delay")
	}
}

func TestWait_FirstCallWaitsFullDelay(t *testing.T) {
	p, clock := newFakePacer(t, time.Second)

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != time.Second {
		t.Errorf("sleeps = %v, want [1s]", clock.sleeps)
	}
}

func TestWait_DelayBeforeEveryRequest(t *testing.T) {
	p, clock := newFakePacer(t, time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait() #%d error = %v", i, err)
		}
		p.Done()
	}

	if len(clock.sleeps) != 3 {
		t.Fatalf("sleeps = %v, want 3 sleeps", clock.sleeps)
	}
	for _, d := range clock.sleeps {
		if d != time.Second {
			t.Errorf("sleep = %s, want 1s", d)
		}
	}
}

func TestWait_CountsFromRequestCompletion(t *testing.T) {
	p, clock := newFakePacer(t, time.Second)
	ctx := context.Background()

	_ = p.Wait(ctx)
	// The request itself takes 3s; the pause after it must still be whole.
	clock.now = clock.now.Add(3 * time.Second)
	p.Done()
	_ = p.Wait(ctx)

	if len(clock.sleeps) != 2 || clock.sleeps[1] != time.Second {
		t.Errorf("sleeps = %v, want [1s 1s]", clock.sleeps)
	}
}

func TestWait_CreditsIdleTimeAfterCompletion(t *testing.T) {
	p, clock := newFakePacer(t, time.Second)
	ctx := context.Background()

	_ = p.Wait(ctx)
	p.Done()
	clock.now = clock.now.Add(400 * time.Millisecond)
	_ = p.Wait(ctx)

	if len(clock.sleeps) != 2 || clock.sleeps[1] != 600*time.Millisecond {
		t.Errorf("sleeps = %v, want [1s 600ms]", clock.sleeps)
	}

	p.Done()
	clock.now = clock.now.Add(2 * time.Second)
	_ = p.Wait(ctx)
	if len(clock.sleeps) != 2 {
		t.Errorf("sleeps = %v, want no sleep after a long idle gap", clock.sleeps)
	}
}

func TestWait_ZeroDelay(t *testing.T) {
	p, clock := newFakePacer(t, 0)
	for i := 0; i < 5; i++ {
		_ = p.Wait(context.Background())
		p.Done()
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clock.sleeps)
	}
}

func TestPacer_Delay(t *testing.T) {
	p, _ := newFakePacer(t, 250*time.Millisecond)
	if p.Delay() != 250*time.Millisecond {
		t.Errorf("Delay() = %s, want 250ms", p.Delay())
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	p, err := NewPacer(time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPacer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = p.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Wait() did not return promptly on cancellation")
	}
}
