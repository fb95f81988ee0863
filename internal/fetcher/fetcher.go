// Package fetcher wraps source scanners with bounded retries and isolates
// per-source failures from the rest of a run.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
	"TenderMonitor/internal/retry"
	"TenderMonitor/internal/scanner"
)

// Options configures retries and per-attempt deadlines.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
	// Timeout bounds a single attempt; zero disables the deadline.
	Timeout time.Duration
	// Concurrency caps parallel source fetches in FetchAll; values below 2 fetch sequentially.
	Concurrency int
}

// Fetcher resolves the scanner of each source and retries failed scans.
type Fetcher struct {
	registry *scanner.Registry
	opts     Options
	metrics  ports.Metrics
	logger   *slog.Logger
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// New builds a Fetcher. Metrics and logger may be nil.
func New(registry *scanner.Registry, opts Options, metrics ports.Metrics, log *slog.Logger) *Fetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = retry.DefaultConfig().MaxAttempts
	}
	return &Fetcher{registry: registry, opts: opts, metrics: metrics, logger: log}
}

// Fetch scans one source. It never returns an error directly: failures are
// reported through Result.Err after the retry budget is spent.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) domain.FetchResult {
	result := domain.FetchResult{Source: src.Name}

	if f.registry == nil {
		result.Err = fmt.Errorf("scanner registry is not configured")
		return result
	}

	strategy, err := f.registry.Resolve(src.Scanner)
	if err != nil {
		result.Err = fmt.Errorf("source %s: %w", src.Name, err)
		return result
	}

	req := scanner.Request{SourceName: src.Name, URL: src.URL, Options: src.Options}
	cfg := retry.Config{
		MaxAttempts: f.opts.MaxAttempts,
		Delay:       f.opts.RetryDelay,
		OnRetry: func(attempt int, err error) {
			f.warn("fetch attempt failed", "source", src.Name, "attempt", attempt, "error", err)
		},
	}

	var entries []domain.FeedEntry
	attempts, err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		if f.metrics != nil {
			f.metrics.FetchAttempt(src.Name)
		}

		attemptCtx := ctx
		if f.opts.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
			defer cancel()
		}

		got, scanErr := strategy.Scan(attemptCtx, req)
		if scanErr != nil {
			return scanErr
		}
		entries = got
		return nil
	})

	result.Attempts = attempts
	if err != nil {
		result.Err = fmt.Errorf("source %s: %w", src.Name, err)
		if f.metrics != nil {
			f.metrics.FetchFailed(src.Name)
		}
		f.warn("source degraded to empty result", "source", src.Name, "attempts", attempts, "error", err)
		return result
	}

	result.Entries = entries
	f.debug("source fetched", "source", src.Name, "entries", len(entries), "attempts", attempts)
	return result
}

// FetchAll fetches every source and returns results in source order. With
// Concurrency > 1 sources are fetched in parallel; a retry pause only delays
// its own source.
func (f *Fetcher) FetchAll(ctx context.Context, sources []domain.Source) []domain.FetchResult {
	results := make([]domain.FetchResult, len(sources))

	if f.opts.Concurrency < 2 {
		for i, src := range sources {
			results[i] = f.Fetch(ctx, src)
		}
		return results
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, f.opts.Concurrency)
	)
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src domain.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = f.Fetch(ctx, src)
		}(i, src)
	}
	wg.Wait()

	return results
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
