// Package ratelimit paces page-visit start times so the target server is
// never hit more than a configured number of times per trailing minute, nor
// more often than a configured minimum gap between consecutive visits.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window is the trailing interval over which the per-minute cap applies.
const window = time.Minute

// Limiter throttles request start times. It is safe for concurrent use.
//
// Acquire's read-prune-sleep-record sequence is one critical section: the
// mutex is held across the sleeps, so concurrent callers serialize through
// the limiter in entry order. Releasing the lock around the sleeps would let
// two callers observe the same window and both record a start, violating the
// cap.
type Limiter struct {
	mu        sync.Mutex
	minDelay  time.Duration
	maxPerMin int
	starts    []time.Time // ascending start timestamps within the window

	// Test seams.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the given minimum inter-request delay and
// maximum number of request starts per trailing minute.
func New(minDelay time.Duration, maxPerMinute int) *Limiter {
	return &Limiter{
		minDelay:  minDelay,
		maxPerMin: maxPerMinute,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Acquire blocks the caller until it is permissible to start a request, then
// records the start. It returns early with the context's error if ctx is
// cancelled while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	// Window at capacity: wait until the oldest start ages out.
	if len(l.starts) >= l.maxPerMin {
		if wait := window - now.Sub(l.starts[0]); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
		now = l.now()
		l.prune(now)
	}

	// Enforce the minimum gap since the most recent start.
	if n := len(l.starts); n > 0 {
		if gap := now.Sub(l.starts[n-1]); gap < l.minDelay {
			if err := l.sleep(ctx, l.minDelay-gap); err != nil {
				return err
			}
			now = l.now()
		}
	}

	l.starts = append(l.starts, now)
	return nil
}

// prune discards starts older than the trailing window.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(l.starts) && !l.starts[i].After(cutoff) {
		i++
	}
	l.starts = l.starts[i:]
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
