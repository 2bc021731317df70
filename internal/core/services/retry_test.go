package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{Backoff: 100 * time.Millisecond, Multiplier: 2, MaxBackoff: time.Second}

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, 800*time.Millisecond, p.Delay(4))
	assert.Equal(t, time.Second, p.Delay(5), "capped")
	assert.Equal(t, time.Second, p.Delay(50))
}

func TestRetryPolicy_Do_SucceedsAfterTransientFailures(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5}
	calls := 0

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_Do_Exhausted(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}
	boom := errors.New("boom")
	calls := 0

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsFatal(err))
}

func TestRetryPolicy_Do_FatalStopsImmediately(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10}
	for _, fatal := range []error{
		fmt.Errorf("%w: garbage", domain.ErrUnparseableResponse),
		domain.NewStoreError("add record", errors.New("disk full")),
	} {
		calls := 0
		attempts, err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return fatal
		})
		assert.Equal(t, 1, attempts)
		assert.Equal(t, 1, calls)
		assert.True(t, IsFatal(err))
	}
}

func TestRetryPolicy_Do_CancelledDuringBackoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	attempts, err := p.Do(ctx, func(context.Context) error {
		cancel()
		return errors.New("temporary")
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRetryPolicy(t *testing.T) {
	p := NewRetryPolicy(domain.PipelineOptions{Retries: 0, RetryBackoff: time.Second})
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Backoff)
	assert.Equal(t, DefaultMaxBackoff, p.MaxBackoff)
}

func TestBatchStatus_String(t *testing.T) {
	assert.Equal(t, "success", BatchSuccess.String())
	assert.Equal(t, "partial", BatchPartial.String())
	assert.Equal(t, "failure", BatchFailure.String())
}

func TestRetryPolicy_Do_PermanentErrorStopsAtOnce(t *testing.T) {
	rejected := errors.New("400 bad request")
	p := RetryPolicy{
		MaxAttempts: 5,
		Permanent:   func(err error) bool { return errors.Is(err, rejected) },
	}
	calls := 0

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("esearch: %w", rejected)
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, rejected)
	assert.NotErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.False(t, IsFatal(err), "fails the batch, not the run")
}

func TestRetryPolicy_Do_TransientErrorsStillRetried(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 4,
		Permanent:   func(error) bool { return false },
	}
	calls := 0

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("connection reset")
	})

	assert.Equal(t, 4, attempts)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
}
