// Package metrics collects run counters and exports them in the Prometheus
// text format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

const namespace = "tendermonitor"

// Collector holds the metrics of one run on a private registry.
type Collector struct {
	registry *prometheus.Registry

	fetchAttempts    *prometheus.CounterVec
	fetchFailures    *prometheus.CounterVec
	entries          *prometheus.CounterVec
	channelDelivery  *prometheus.CounterVec
	recordsAccepted  prometheus.Counter
	recordsTotal     prometheus.Gauge
	runDuration      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
	lastRunSuccess   prometheus.Gauge
}

var _ ports.Metrics = (*Collector)(nil)

// New registers all run metrics on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		fetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Feed fetch attempts per source.",
		}, []string{"source"}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Sources that failed after exhausting retries.",
		}, []string{"source"}),
		entries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Feed entries by pipeline outcome.",
		}, []string{"source", "outcome"}),
		channelDelivery: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_deliveries_total",
			Help:      "Notification attempts by channel and status.",
		}, []string{"channel", "status"}),
		recordsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_accepted_total",
			Help:      "Records accepted in this run.",
		}),
		recordsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Rows in the record store after the run.",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run finished without a fatal error.",
		}),
	}
}

// FetchAttempt counts one fetch attempt for source.
func (c *Collector) FetchAttempt(source string) {
	c.fetchAttempts.WithLabelValues(source).Inc()
}

// FetchFailed counts a source that exhausted its retries.
func (c *Collector) FetchFailed(source string) {
	c.fetchFailures.WithLabelValues(source).Inc()
}

// Entry counts one evaluated entry by outcome.
func (c *Collector) Entry(source string, outcome domain.EntryOutcome) {
	c.entries.WithLabelValues(source, string(outcome)).Inc()
	if outcome == domain.OutcomeAccepted {
		c.recordsAccepted.Inc()
	}
}

// ChannelDelivery counts one notification outcome.
func (c *Collector) ChannelDelivery(channel string, status domain.DeliveryStatus) {
	c.channelDelivery.WithLabelValues(channel, string(status)).Inc()
}

// RunFinished stamps the run-level gauges.
func (c *Collector) RunFinished(started, finished time.Time, totalRecords int, err error) {
	c.runDuration.Set(finished.Sub(started).Seconds())
	c.lastRunTimestamp.Set(float64(finished.Unix()))
	c.recordsTotal.Set(float64(totalRecords))
	if err != nil {
		c.lastRunSuccess.Set(0)
		return
	}
	c.lastRunSuccess.Set(1)
}

// WriteTextfile exports the registry to path, replacing it atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
