package retry

import (
	"context"
	"time"

	backoff "github.com/sethvargo/go-retry"
)

// Policy is a bounded retry budget for transient failures: exponential
// backoff starting at BaseDelay, capped at MaxDelay, giving up after
// MaxRetries additional attempts. IsRetryable decides which errors are
// transient; everything else propagates immediately.
type Policy struct {
	MaxRetries  uint64
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	IsRetryable func(error) bool
}

// DefaultPolicy mirrors the transaction retry budget used across the
// persistence layer: 100ms base, 1s cap, 3 retries.
func DefaultPolicy(isRetryable func(error) bool) Policy {
	return Policy{
		MaxRetries:  3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    1000 * time.Millisecond,
		IsRetryable: isRetryable,
	}
}

// Do runs fn under the policy. The last error is returned once the budget
// is exhausted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	b := backoff.NewExponential(p.BaseDelay)
	b = backoff.WithCappedDuration(p.MaxDelay, b)
	b = backoff.WithMaxRetries(p.MaxRetries, b)

	return backoff.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.IsRetryable != nil && p.IsRetryable(err) {
			return backoff.RetryableError(err)
		}
		return err
	})
}
