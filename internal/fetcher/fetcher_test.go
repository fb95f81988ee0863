package fetcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/retry"
	"TenderMonitor/internal/scanner"
)

type scriptedScanner struct {
	mu       sync.Mutex
	failures map[string]int // remaining failures per source; -1 fails forever
	entries  map[string][]domain.FeedEntry
	calls    map[string]int
	block    map[string]chan struct{}
}

func newScriptedScanner() *scriptedScanner {
	return &scriptedScanner{
		failures: map[string]int{},
		entries:  map[string][]domain.FeedEntry{},
		calls:    map[string]int{},
		block:    map[string]chan struct{}{},
	}
}

func (s *scriptedScanner) Name() string { return "fake" }

func (s *scriptedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.FeedEntry, error) {
	s.mu.Lock()
	s.calls[req.SourceName]++
	remaining := s.failures[req.SourceName]
	if remaining > 0 {
		s.failures[req.SourceName] = remaining - 1
	}
	gate := s.block[req.SourceName]
	entries := s.entries[req.SourceName]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if remaining != 0 {
		return nil, errors.New("transport failure")
	}
	return entries, nil
}

func (s *scriptedScanner) callCount(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[source]
}

type countingMetrics struct {
	mu       sync.Mutex
	attempts map[string]int
	failed   map[string]int
}

func (m *countingMetrics) FetchAttempt(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempts == nil {
		m.attempts = map[string]int{}
	}
	m.attempts[source]++
}

func (m *countingMetrics) FetchFailed(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed == nil {
		m.failed = map[string]int{}
	}
	m.failed[source]++
}

func (m *countingMetrics) Entry(string, domain.EntryOutcome) {}

func (m *countingMetrics) ChannelDelivery(string, domain.DeliveryStatus) {}

func source(name string) domain.Source {
	return domain.Source{Name: name, URL: "https://" + name, Scanner: "fake"}
}

func TestFetchRecoversWithinBudget(t *testing.T) {
	t.Parallel()

	sc := newScriptedScanner()
	sc.failures["dcd"] = 2
	sc.entries["dcd"] = []domain.FeedEntry{{Link: "https://x/1"}}

	f := New(scanner.NewRegistry(sc), Options{MaxAttempts: 3}, nil, nil)
	res := f.Fetch(context.Background(), source("dcd"))

	require.True(t, res.OK())
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, res.Entries, 1)
}

func TestRetryExhaustionDegradesToFailedResult(t *testing.T) {
	t.Parallel()

	sc := newScriptedScanner()
	sc.failures["broken"] = -1
	sc.entries["healthy"] = []domain.FeedEntry{{Link: "https://x/2"}}
	metrics := &countingMetrics{}

	f := New(scanner.NewRegistry(sc), Options{MaxAttempts: 3, RetryDelay: time.Millisecond}, metrics, nil)
	results := f.FetchAll(context.Background(), []domain.Source{source("broken"), source("healthy")})

	require.Len(t, results, 2)

	assert.False(t, results[0].OK())
	assert.Empty(t, results[0].Entries)
	assert.Equal(t, 3, results[0].Attempts)
	assert.ErrorIs(t, results[0].Err, retry.ErrMaxAttemptsExceeded)
	assert.Equal(t, 3, sc.callCount("broken"))

	assert.True(t, results[1].OK())
	assert.Len(t, results[1].Entries, 1)

	assert.Equal(t, 3, metrics.attempts["broken"])
	assert.Equal(t, 1, metrics.failed["broken"])
	assert.Equal(t, 1, metrics.attempts["healthy"])
}

func TestSuccessWithZeroEntriesIsDistinguishable(t *testing.T) {
	t.Parallel()

	sc := newScriptedScanner()
	f := New(scanner.NewRegistry(sc), Options{MaxAttempts: 2}, nil, nil)

	res := f.Fetch(context.Background(), source("quiet"))

	assert.True(t, res.OK())
	assert.Empty(t, res.Entries)
	assert.Equal(t, 1, res.Attempts)
}

func TestUnknownScannerFailsWithoutAttempts(t *testing.T) {
	t.Parallel()

	f := New(scanner.NewRegistry(), Options{}, nil, nil)
	res := f.Fetch(context.Background(), domain.Source{Name: "x", Scanner: "selenium"})

	assert.False(t, res.OK())
	assert.Zero(t, res.Attempts)
}

func TestPerAttemptTimeout(t *testing.T) {
	t.Parallel()

	sc := newScriptedScanner()
	sc.block["slow"] = make(chan struct{})

	f := New(scanner.NewRegistry(sc), Options{MaxAttempts: 2, Timeout: 10 * time.Millisecond}, nil, nil)
	res := f.Fetch(context.Background(), source("slow"))

	assert.False(t, res.OK())
	assert.Equal(t, 2, res.Attempts)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestConcurrentFetchKeepsSourceOrder(t *testing.T) {
	t.Parallel()

	sc := newScriptedScanner()
	sc.failures["slow"] = -1
	for _, name := range []string{"a", "b", "c"} {
		sc.entries[name] = []domain.FeedEntry{{Link: "https://" + name}}
	}

	f := New(scanner.NewRegistry(sc), Options{MaxAttempts: 2, RetryDelay: 50 * time.Millisecond, Concurrency: 4}, nil, nil)

	start := time.Now()
	results := f.FetchAll(context.Background(), []domain.Source{source("slow"), source("a"), source("b"), source("c")})
	elapsed := time.Since(start)

	require.Len(t, results, 4)
	assert.Equal(t, "slow", results[0].Source)
	assert.False(t, results[0].OK())
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, results[i+1].Source)
		assert.Equal(t, "https://"+name, results[i+1].Entries[0].Link)
	}
	assert.Less(t, elapsed, time.Second)
}
