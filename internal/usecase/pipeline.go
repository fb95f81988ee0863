package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

// Limits caps the persisted text fields, in runes.
type Limits struct {
	TitleLength   int
	SummaryLength int
}

// DefaultLimits mirrors the column widths of the monitoring spreadsheet.
func DefaultLimits() Limits {
	return Limits{TitleLength: 60, SummaryLength: 200}
}

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Sources    []domain.Source
	Fetcher    ports.SourceFetcher
	Classifier ports.EntryClassifier
	Records    ports.RecordStore
	Seen       ports.SeenStore
	Notifier   ports.Notifier
	Reporter   ports.Reporter
	Metrics    ports.Metrics
	Limits     Limits
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Pipeline implements one fetch, classify, persist and notify pass.
type Pipeline struct {
	sources    []domain.Source
	fetcher    ports.SourceFetcher
	classifier ports.EntryClassifier
	records    ports.RecordStore
	seen       ports.SeenStore
	notifier   ports.Notifier
	reporter   ports.Reporter
	metrics    ports.Metrics
	limits     Limits
	clock      func() time.Time
	logger     *slog.Logger
}

// RunReport summarizes a finished run.
type RunReport struct {
	RunID        string
	Sources      []domain.FetchResult
	Outcomes     map[domain.EntryOutcome]int
	New          []domain.ClassifiedRecord
	TotalRecords int
	Attachments  []domain.Attachment
	Channels     []domain.ChannelOutcome
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		sources:    deps.Sources,
		fetcher:    deps.Fetcher,
		classifier: deps.Classifier,
		records:    deps.Records,
		seen:       deps.Seen,
		notifier:   deps.Notifier,
		reporter:   deps.Reporter,
		metrics:    deps.Metrics,
		limits:     deps.Limits,
		clock:      clock,
		logger:     logger,
	}
}

// Run performs a single pass. Any state load or save failure aborts the run
// before notification; fetch and channel failures never do. A context
// cancelled during fetching aborts the run without touching stored state.
func (p *Pipeline) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		RunID:    uuid.NewString(),
		Outcomes: map[domain.EntryOutcome]int{},
	}
	log := p.logger.With("run_id", report.RunID)

	if p.fetcher == nil || p.classifier == nil || p.records == nil || p.seen == nil {
		return report, fmt.Errorf("pipeline is missing a required dependency")
	}

	seen, err := p.seen.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load seen set: %w", err)
	}
	existing, err := p.records.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load records: %w", err)
	}
	log.Info("state loaded", "seen", seen.Len(), "records", len(existing), "sources", len(p.sources))

	report.Sources = p.fetcher.FetchAll(ctx, p.sources)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted before persisting: %w", err)
	}

	var last time.Time
	for _, result := range report.Sources {
		if !result.OK() {
			log.Warn("source skipped", "source", result.Source, "attempts", result.Attempts, "error", result.Err)
			continue
		}

		for _, entry := range result.Entries {
			outcome, rec := p.evaluate(entry, seen)
			report.Outcomes[outcome]++
			if p.metrics != nil {
				p.metrics.Entry(result.Source, outcome)
			}
			if outcome != domain.OutcomeAccepted {
				continue
			}

			now := p.clock()
			if now.Before(last) {
				now = last
			}
			last = now
			rec.RetrievedAt = now

			seen.Add(rec.Link)
			report.New = append(report.New, rec)
			log.Debug("entry accepted", "source", result.Source, "country", rec.Country, "link", rec.Link, "high_potential", rec.HighPotential)
		}
	}

	merged, added := domain.MergeRecords(existing, report.New)
	report.TotalRecords = len(merged)
	if added != len(report.New) {
		log.Warn("accepted links already present in record store", "accepted", len(report.New), "added", added)
	}

	if err := p.records.Save(ctx, merged); err != nil {
		return report, fmt.Errorf("save records: %w", err)
	}
	if err := p.seen.Save(ctx, seen); err != nil {
		return report, fmt.Errorf("save seen set: %w", err)
	}
	log.Info("state saved", "new", len(report.New), "records", report.TotalRecords, "seen", seen.Len())

	if len(report.New) == 0 {
		return report, nil
	}

	if p.reporter != nil {
		attachments, err := p.reporter.Report(ctx, merged)
		if err != nil {
			log.Warn("summary report failed", "error", err)
		}
		report.Attachments = attachments
	}

	if p.notifier != nil {
		report.Channels = p.notifier.Notify(ctx, report.New, report.Attachments)
	}

	return report, nil
}

// evaluate applies dedup and classification to one entry. The returned
// record is only meaningful when the outcome is OutcomeAccepted.
func (p *Pipeline) evaluate(entry domain.FeedEntry, seen *domain.SeenSet) (domain.EntryOutcome, domain.ClassifiedRecord) {
	link := entry.Identity()
	if link == "" {
		return domain.OutcomeNoLink, domain.ClassifiedRecord{}
	}
	if seen.Has(link) {
		return domain.OutcomeSeen, domain.ClassifiedRecord{}
	}

	class := p.classifier.Classify(entry.Text())
	if !class.Matched() {
		return domain.OutcomeNoCountry, domain.ClassifiedRecord{}
	}
	if !class.Candidate {
		return domain.OutcomeNotCandidate, domain.ClassifiedRecord{}
	}

	return domain.OutcomeAccepted, domain.ClassifiedRecord{
		Country:       class.Country,
		Title:         domain.Truncate(entry.Title, p.limits.TitleLength),
		Summary:       domain.Truncate(entry.Summary, p.limits.SummaryLength),
		Link:          link,
		HighPotential: class.HighPotential,
	}
}
