package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TenderMonitor/internal/domain"
)

func TestCollectorCounts(t *testing.T) {
	t.Parallel()

	c := New()
	c.FetchAttempt("DCD")
	c.FetchAttempt("DCD")
	c.FetchFailed("DCD")
	c.Entry("DCD", domain.OutcomeAccepted)
	c.Entry("DCD", domain.OutcomeSeen)
	c.ChannelDelivery("email", domain.StatusDisabled)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.fetchAttempts.WithLabelValues("DCD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetchFailures.WithLabelValues("DCD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recordsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.entries.WithLabelValues("DCD", "seen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.channelDelivery.WithLabelValues("email", "disabled")))
}

func TestRunFinishedAndTextfile(t *testing.T) {
	t.Parallel()

	c := New()
	start := time.Unix(1_700_000_000, 0)
	c.RunFinished(start, start.Add(3*time.Second), 12, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.runDuration))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.recordsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.lastRunSuccess))

	path := filepath.Join(t.TempDir(), "textfile", "tendermonitor.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "tendermonitor_records 12"))

	c.RunFinished(start, start, 0, errors.New("boom"))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.lastRunSuccess))
}
