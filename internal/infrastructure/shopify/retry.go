package shopify

import (
	"context"
	"time"

	"ralawise-shopify-sync/internal/domain"
)

// RetryConfig controls the rate-limit retry behavior of the client.
type RetryConfig struct {
	// DefaultRetryAfter is used when a 429 carries no Retry-After hint.
	DefaultRetryAfter time.Duration
}

// DefaultRetryConfig returns the standard retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{DefaultRetryAfter: 2 * time.Second}
}

// sleepFunc pauses for d or until ctx is done. Injectable in tests.
type sleepFunc func(ctx context.Context, d time.Duration)

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// withRetry executes op once and, if it was rate limited, waits the hinted
// duration and retries exactly once. At most one retry: aggressive retrying
// under sustained rate limiting compounds queuing rather than resolving it.
// Every rate-limit event is recorded on the tracker; any other error
// propagates unchanged.
func withRetry(ctx context.Context, tracker *Tracker, sleep sleepFunc, cfg RetryConfig, op func() error) error {
	err := op()
	rl, ok := domain.AsRateLimited(err)
	if !ok {
		return err
	}

	tracker.MarkLimited()
	wait := rl.RetryAfter
	if wait <= 0 {
		wait = cfg.DefaultRetryAfter
	}
	sleep(ctx, wait)
	if err := ctx.Err(); err != nil {
		return err
	}

	err = op()
	if _, ok := domain.AsRateLimited(err); ok {
		tracker.MarkLimited()
	}
	return err
}
