package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"TenderMonitor/internal/classifier"
	"TenderMonitor/internal/config"
	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/fetcher"
	"TenderMonitor/internal/infrastructure/charts"
	"TenderMonitor/internal/infrastructure/email"
	"TenderMonitor/internal/infrastructure/metrics"
	"TenderMonitor/internal/infrastructure/parser"
	"TenderMonitor/internal/infrastructure/storage"
	"TenderMonitor/internal/infrastructure/telegram"
	"TenderMonitor/internal/infrastructure/webhook"
	"TenderMonitor/internal/lock"
	"TenderMonitor/internal/logging"
	"TenderMonitor/internal/ports"
	"TenderMonitor/internal/report"
	"TenderMonitor/internal/scanner"
	"TenderMonitor/internal/usecase"
)

// Application wires configs to use cases and the run lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Collector
	out      io.Writer
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	vocabulary, err := cfg.Classifier.Vocabulary()
	if err != nil {
		return nil, err
	}
	kw, err := classifier.New(vocabulary)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	records, err := storage.NewRecordStore(cfg.Storage.RecordsPath)
	if err != nil {
		return nil, err
	}

	collector := metrics.New()

	client := &http.Client{Timeout: cfg.Fetch.Timeout}
	registry := scanner.NewRegistry(
		parser.NewFeedScanner(client, cfg.Fetch.UserAgent, baseLogger.With("component", "scanner.rss")),
		parser.NewHTMLScanner(client, cfg.Fetch.UserAgent, baseLogger.With("component", "scanner.html")),
	)
	feeds := fetcher.New(registry, fetcher.Options{
		MaxAttempts: cfg.Fetch.MaxAttempts,
		RetryDelay:  cfg.Fetch.RetryDelay,
		Timeout:     cfg.Fetch.Timeout,
		Concurrency: cfg.Fetch.Concurrency,
	}, collector, baseLogger.With("component", "fetcher"))

	notifications := cfg.Notifications
	channels := []ports.Channel{
		email.NewChannel(notifications.Email, baseLogger.With("component", "channel.email")),
		webhook.NewChannel(notifications.Webhook, baseLogger.With("component", "channel.webhook")),
		telegram.NewChannel(notifications.Telegram, baseLogger.With("component", "channel.telegram")),
	}
	dispatcher := usecase.NewDispatcher(notifications.Subject, channels, collector, baseLogger.With("component", "notifier"))

	var reporter ports.Reporter
	if cfg.Report.Enabled {
		reporter = report.NewReporter(charts.PNGRenderer{}, cfg.Report.OutputDir, baseLogger.With("component", "report"))
	}

	limits := usecase.DefaultLimits()
	if cfg.Limits.TitleLength > 0 {
		limits.TitleLength = cfg.Limits.TitleLength
	}
	if cfg.Limits.SummaryLength > 0 {
		limits.SummaryLength = cfg.Limits.SummaryLength
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:    sources(cfg.Sources),
		Fetcher:    feeds,
		Classifier: kw,
		Records:    records,
		Seen:       storage.NewSeenSetFile(cfg.Storage.SeenPath),
		Notifier:   dispatcher,
		Reporter:   reporter,
		Metrics:    collector,
		Limits:     limits,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	baseLogger.Info("application configured",
		"policy", kw.Policy(),
		"scanners", registry.Names(),
		"sources", len(cfg.Sources),
		"records", cfg.Storage.RecordsPath,
	)

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		metrics:  collector,
		out:      os.Stdout,
	}, nil
}

// Run performs a single monitoring pass under the run lock.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Storage.LockFile != "" {
		runLock, err := lock.TryLock(a.cfg.Storage.LockFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := runLock.Release(); err != nil {
				a.logger.Warn("release run lock", "error", err)
			}
		}()
	}

	started := time.Now()
	result, err := a.pipeline.Run(ctx)
	a.metrics.RunFinished(started, time.Now(), result.TotalRecords, err)
	a.exportMetrics()

	if err != nil {
		return fmt.Errorf("run %s: %w", result.RunID, err)
	}

	writeSummary(a.out, result)
	a.logger.Info("run finished",
		"run_id", result.RunID,
		"new", len(result.New),
		"records", result.TotalRecords,
		"failed_sources", countFailed(result.Sources),
		"failed_channels", countStatus(result.Channels, domain.StatusFailed),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return nil
}

func (a *Application) exportMetrics() {
	path := a.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.logger.Warn("metrics export failed", "error", err)
	}
}

// IsLocked reports whether err means another run holds the lock.
func IsLocked(err error) bool {
	return errors.Is(err, lock.ErrLocked)
}

func sources(cfg []config.SourceConfig) []domain.Source {
	out := make([]domain.Source, 0, len(cfg))
	for _, s := range cfg {
		out = append(out, domain.Source{Name: s.Name, URL: s.URL, Scanner: s.Scanner, Options: s.Options})
	}
	return out
}

func countFailed(results []domain.FetchResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

func countStatus(outcomes []domain.ChannelOutcome, status domain.DeliveryStatus) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
