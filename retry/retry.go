// Package retry provides an explicit retry policy with exponential backoff.
package retry

import (
	"context"
	"time"
)

// Policy describes how a designated operation is retried. The wait before
// re-attempt number n (1-based) is BaseDelay * 2^(n-1).
type Policy struct {
	// MaxRetries is the number of re-attempts after the first failure.
	MaxRetries int

	// BaseDelay seeds the exponential backoff.
	BaseDelay time.Duration

	// Retryable decides whether an error is worth retrying. Nil means
	// every error is retryable.
	Retryable func(error) bool

	// Test seam.
	sleep func(ctx context.Context, d time.Duration) error
}

// Do runs op up to MaxRetries+1 times. It returns nil on the first success,
// the context's error if ctx is cancelled while backing off, and otherwise
// the last error once retries are exhausted or an error is not retryable.
func (p Policy) Do(ctx context.Context, op func() error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 0; ; attempt++ {
		last = op()
		if last == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return last
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return last
		}
		wait := p.BaseDelay * (1 << attempt)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

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
