package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 3, BaseDelay: time.Second}
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err=%v calls=%d, want success on first try", err, calls)
	}
}

func TestDo_ExponentialBackoff(t *testing.T) {
	var waits []time.Duration
	p := Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}

	wantErr := errors.New("still failing")
	err := p.Do(context.Background(), func() error { return wantErr })

	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the last operation error", err)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestDo_NonRetryableStopsEarly(t *testing.T) {
	fatal := errors.New("not found")
	calls := 0
	p := Policy{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		Retryable:  func(err error) bool { return !errors.Is(err, fatal) },
		sleep:      func(context.Context, time.Duration) error { return nil },
	}

	err := p.Do(context.Background(), func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) || calls != 1 {
		t.Errorf("err=%v calls=%d, want a single attempt", err, calls)
	}
}

func TestDo_EventualSuccess(t *testing.T) {
	calls := 0
	p := Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		sleep:      func(context.Context, time.Duration) error { return nil },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d, want success on third attempt", err, calls)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	err := p.Do(ctx, func() error { return errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
