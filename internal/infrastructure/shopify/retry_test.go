package shopify

import (
	"context"
	"errors"
	"testing"
	"time"

	"ralawise-shopify-sync/internal/domain"
)

func TestWithRetryRetriesOnceOnRateLimit(t *testing.T) {
	tracker := NewTracker()
	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	err := withRetry(context.Background(), tracker, sleep, DefaultRetryConfig(), func() error {
		calls++
		if calls == 1 {
			return &domain.RateLimitedError{RetryAfter: 3 * time.Second}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(sleeps) != 1 || sleeps[0] != 3*time.Second {
		t.Errorf("expected one 3s sleep from the server hint, got %v", sleeps)
	}
	if !tracker.RecentlyLimited(time.Minute) {
		t.Error("expected tracker to record the rate-limit event")
	}
}

func TestWithRetryUsesDefaultDelayWithoutHint(t *testing.T) {
	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	err := withRetry(context.Background(), NewTracker(), sleep, DefaultRetryConfig(), func() error {
		calls++
		if calls == 1 {
			return &domain.RateLimitedError{}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sleeps) != 1 || sleeps[0] != 2*time.Second {
		t.Errorf("expected the 2s default delay, got %v", sleeps)
	}
}

func TestWithRetryGivesUpAfterOneRetry(t *testing.T) {
	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	err := withRetry(context.Background(), NewTracker(), sleep, DefaultRetryConfig(), func() error {
		calls++
		return &domain.RateLimitedError{}
	})
	if _, ok := domain.AsRateLimited(err); !ok {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 calls, got %d", calls)
	}
	if len(sleeps) != 1 {
		t.Errorf("expected a single sleep, got %d", len(sleeps))
	}
}

func TestWithRetryPropagatesOtherErrorsImmediately(t *testing.T) {
	tracker := NewTracker()
	boom := errors.New("boom")

	calls := 0
	err := withRetry(context.Background(), tracker, func(context.Context, time.Duration) {}, DefaultRetryConfig(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
	if tracker.RecentlyLimited(time.Minute) {
		t.Error("tracker must not record non-rate-limit errors")
	}
}

func TestTrackerWindow(t *testing.T) {
	tracker := NewTracker()
	now := time.Now()
	tracker.now = func() time.Time { return now }

	if tracker.RecentlyLimited(time.Minute) {
		t.Error("fresh tracker must not report a recent limit")
	}

	tracker.MarkLimited()
	if !tracker.RecentlyLimited(time.Minute) {
		t.Error("expected a recent limit right after marking")
	}

	now = now.Add(61 * time.Second)
	if tracker.RecentlyLimited(time.Minute) {
		t.Error("limit outside the window must not be reported")
	}
}
