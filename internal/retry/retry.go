// Package retry runs an operation a bounded number of times with a fixed pause between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMaxAttemptsExceeded is returned when every attempt failed.
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrContextCancelled is returned when the context ends while waiting to retry.
	ErrContextCancelled = errors.New("context cancelled during retry")
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts counts the initial attempt.
	MaxAttempts int
	// Delay is the pause between consecutive attempts.
	Delay time.Duration
	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// DefaultConfig returns three attempts five seconds apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
	}
}

// Do calls fn until it succeeds or attempts run out. It returns the number of
// attempts made alongside the final error.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) (int, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return attempt - 1, fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}

		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		if cfg.Delay > 0 {
			timer := time.NewTimer(cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt, fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
			case <-timer.C:
			}
		}
	}

	return cfg.MaxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}
