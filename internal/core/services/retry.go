package services

import (
	"context"
	"time"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/logger"
)

// RetryPolicy retries an operation a fixed number of times with a fixed
// pause between attempts. Only errors the Retryable predicate accepts
// are retried; everything else is terminal on the attempt it occurs.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff is the fixed pause between attempts.
	Backoff time.Duration

	// Retryable decides whether a failed attempt is worth repeating.
	Retryable func(error) bool

	// Sleep pauses between attempts. Overridable in tests.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy matches the generation backend's failure profile:
// three attempts, two seconds apart, transient failures only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
		Retryable:   domain.RetryableGeneration,
		Sleep:       time.Sleep,
	}
}

// Do runs op until it succeeds, exhausts the attempt budget, fails
// terminally, or the context is cancelled.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		logger.Warn("Attempt %d/%d failed: %v; retrying in %s", attempt, p.MaxAttempts, err, p.Backoff)
		p.Sleep(p.Backoff)
	}
	return err
}
