package engine_v1

import (
	"context"
	"time"

	"github.com/jpillora/backoff"

	"github.com/marketloop/marketloop/pkg/errors"
)

// retryBackoffCap bounds the delay between executor attempts.
const retryBackoffCap = 5 * time.Second

// RetryPolicy governs executor retries for transient failures. Delays grow
// exponentially from the base with jitter, capped at retryBackoffCap.
type RetryPolicy struct {
	maxAttempts int
	backoff     *backoff.Backoff
	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a RetryPolicy. maxAttempts is the total number of
// attempts including the first; base is the delay before the first retry.
func NewRetryPolicy(maxAttempts int, base time.Duration) *RetryPolicy {
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		backoff: &backoff.Backoff{
			Min:    base,
			Max:    retryBackoffCap,
			Factor: 2,
			Jitter: true,
		},
		sleep: sleepContext,
	}
}

// MaxAttempts returns the total attempt budget.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// Do invokes fn until it succeeds, fails permanently, or the attempt budget
// runs out. Only transient errors are retried. It returns the last error and
// the number of attempts made.
func (p *RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		if !errors.IsTransient(lastErr) {
			return attempt, lastErr
		}

		if attempt == p.maxAttempts {
			break
		}

		// ForAttempt is zero-based: the delay before retry N uses attempt N-1.
		delay := p.backoff.ForAttempt(float64(attempt - 1))
		if err := p.sleep(ctx, delay); err != nil {
			return attempt, lastErr
		}
	}

	return p.maxAttempts, lastErr
}

// sleepContext sleeps for d or until the context is done.
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
