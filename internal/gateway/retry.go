package gateway

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// withRetry runs fn until it succeeds, fails permanently or the attempts
// are exhausted. It is only used for idempotent reads.
func (c *Client) withRetry(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := range c.retry.MaxAttempts {
		raw, err := fn()
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !retryable(err) {
			return nil, err
		}

		// Last attempt, don't sleep.
		if attempt == c.retry.MaxAttempts-1 {
			break
		}
		if err := c.sleep(ctx, c.backoff(attempt, err)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// backoff computes the wait before the next attempt.
func (c *Client) backoff(attempt int, err error) time.Duration {
	var unavail *UnavailableError
	if errors.As(err, &unavail) && unavail.RetryAfter > 0 {
		return unavail.RetryAfter
	}

	mult := c.retry.Multiplier
	if mult <= 0 {
		mult = 1
	}
	wait := float64(c.retry.InitialWait) * math.Pow(mult, float64(attempt))
	if c.retry.MaxWait > 0 && wait > float64(c.retry.MaxWait) {
		wait = float64(c.retry.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
