package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// BatchStatus classifies the outcome of one batch of remote work.
type BatchStatus int

const (
	// BatchSuccess means every item in the batch was resolved.
	BatchSuccess BatchStatus = iota
	// BatchPartial means the request succeeded but some items were unknown.
	BatchPartial
	// BatchFailure means the request exhausted its retries.
	BatchFailure
)

// String returns the status name.
func (s BatchStatus) String() string {
	switch s {
	case BatchSuccess:
		return "success"
	case BatchPartial:
		return "partial"
	case BatchFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// BatchResult is the accounting for one batch.
type BatchResult struct {
	Status   BatchStatus
	Items    int
	Added    int
	Failed   int
	Attempts int
	Err      error
}

// RetryPolicy retries a batch request with exponential backoff.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff is the delay before the second attempt.
	Backoff time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// Permanent reports errors that no retry can fix, such as a rejected
	// request. Such an error fails the batch at once. Nil treats every
	// non-fatal error as transient.
	Permanent func(error) bool
}

// DefaultMaxBackoff caps retry delays when none is configured.
const DefaultMaxBackoff = 30 * time.Second

// NewRetryPolicy derives a policy from pipeline options.
func NewRetryPolicy(opts domain.PipelineOptions) RetryPolicy {
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}
	return RetryPolicy{
		MaxAttempts: attempts,
		Backoff:     opts.RetryBackoff,
		Multiplier:  2,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// Delay returns the wait before attempt n+1, after n failed attempts.
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 || p.Backoff <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.Backoff)
	for i := 1; i < n; i++ {
		d *= mult
		if p.MaxBackoff > 0 && d >= float64(p.MaxBackoff) {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && time.Duration(d) > p.MaxBackoff {
		return p.MaxBackoff
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, returns a fatal or permanent error, or the
// attempts run out. It returns the number of attempts made. Exhaustion wraps
// ErrRetriesExhausted and the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.Delay(attempt-1)); err != nil {
				return attempt - 1, err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if IsFatal(lastErr) {
			return attempt, lastErr
		}
		if p.Permanent != nil && p.Permanent(lastErr) {
			return attempt, fmt.Errorf("permanent failure: %w", lastErr)
		}
	}
	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, maxAttempts, lastErr)
}

// IsFatal reports whether an error must stop the run instead of being retried:
// cache failures, responses that cannot be parsed, and cancellation.
func IsFatal(err error) bool {
	return domain.IsStoreError(err) ||
		errors.Is(err, domain.ErrUnparseableResponse) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
