package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives a Limiter deterministically: sleeps advance the clock
// instead of blocking, and every slept duration is recorded.
type fakeClock struct {
	t      time.Time
	slept  []time.Duration
	cancel context.CancelFunc // when set, cancel the context on first sleep
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
	return nil
}

// advance moves the clock forward without going through the limiter.
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(minDelay time.Duration, maxPerMinute int, clock *fakeClock) *Limiter {
	l := New(minDelay, maxPerMinute)
	l.now = clock.now
	l.sleep = clock.sleep
	return l
}

func TestAcquire_MinDelayBetweenStarts(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(5*time.Second, 100, clock)

	for i := 0; i < 4; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}

	for i := 1; i < len(l.starts); i++ {
		gap := l.starts[i].Sub(l.starts[i-1])
		if gap < 5*time.Second {
			t.Errorf("starts %d and %d only %v apart, want >= 5s", i-1, i, gap)
		}
	}
}

func TestAcquire_WindowNeverExceedsCap(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(0, 3, clock)

	for i := 0; i < 10; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
		// Invariant: no trailing 60s window holds more than 3 starts.
		count := 0
		cutoff := clock.now().Add(-time.Minute)
		for _, s := range l.starts {
			if s.After(cutoff) {
				count++
			}
		}
		if count > 3 {
			t.Fatalf("after acquire %d: %d starts in trailing window, cap is 3", i, count)
		}
	}
}

func TestAcquire_SleepsUntilOldestAgesOut(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(0, 2, clock)

	for i := 0; i < 2; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if len(clock.slept) != 0 {
		t.Fatalf("first two acquires slept %v, want none", clock.slept)
	}

	// Third acquire must wait the full window (oldest start is "now").
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != time.Minute {
		t.Errorf("slept %v, want exactly [1m0s]", clock.slept)
	}
}

func TestAcquire_NoSleepAfterWindowExpires(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(0, 2, clock)

	for i := 0; i < 2; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}

	// All recorded starts fall out of the window.
	clock.advance(61 * time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("slept %v after window expired, want no sleeps", clock.slept)
	}
}

func TestAcquire_MinDelaySkippedWhenGapElapsed(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(5*time.Second, 100, clock)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	clock.advance(7 * time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("slept %v, want none when the gap already elapsed", clock.slept)
	}
}

func TestAcquire_ContextCancelledDuringWait(t *testing.T) {
	clock := newFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	clock.cancel = cancel

	l := newTestLimiter(5*time.Second, 100, clock)

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	// Second acquire needs to sleep; the fake sleep cancels the context.
	err := l.Acquire(ctx)
	if err != context.Canceled {
		t.Fatalf("Acquire = %v, want context.Canceled", err)
	}
	if len(l.starts) != 1 {
		t.Errorf("cancelled acquire recorded a start: %d starts", len(l.starts))
	}
}

func TestSleepCtx_ZeroAndNegative(t *testing.T) {
	if err := sleepCtx(context.Background(), 0); err != nil {
		t.Errorf("sleepCtx(0) = %v", err)
	}
	if err := sleepCtx(context.Background(), -time.Second); err != nil {
		t.Errorf("sleepCtx(-1s) = %v", err)
	}
}
