package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []int
	cfg := Config{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
	}

	attempts, err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	cause := errors.New("feed unreachable")
	calls := 0

	attempts, err := Do(context.Background(), Config{MaxAttempts: 4}, func(context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, 4, calls)
}

func TestDoHonoursCancellationDuringDelay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	attempts, err := Do(ctx, Config{MaxAttempts: 5, Delay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, ErrContextCancelled)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDoDefaultsToSingleAttempt(t *testing.T) {
	t.Parallel()

	attempts, err := Do(context.Background(), Config{}, func(context.Context) error {
		return errors.New("nope")
	})

	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.Equal(t, 1, attempts)
}
