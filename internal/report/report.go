// Package report aggregates the record table into the summary charts
// attached to notifications.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

const (
	CountryChartFile = "projects_by_country.png"
	MonthChartFile   = "projects_by_month.png"
	monthLayout      = "2006-01"
)

// Count is one labelled bucket.
type Count struct {
	Label string
	Value int
}

// ByCountry counts records per country, largest first, ties by name.
func ByCountry(records []domain.ClassifiedRecord) []Count {
	counts := map[string]int{}
	for _, rec := range records {
		label := rec.Country
		if label == "" {
			label = "unknown"
		}
		counts[label]++
	}

	out := toCounts(counts)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// ByMonth counts records per YYYY-MM in chronological order. Records without a timestamp are skipped.
func ByMonth(records []domain.ClassifiedRecord) []Count {
	counts := map[string]int{}
	for _, rec := range records {
		if rec.RetrievedAt.IsZero() {
			continue
		}
		counts[rec.RetrievedAt.Format(monthLayout)]++
	}

	out := toCounts(counts)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func toCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, value := range m {
		out = append(out, Count{Label: label, Value: value})
	}
	return out
}

// ChartRenderer writes chart images.
type ChartRenderer interface {
	Bar(path, title string, counts []Count) error
	Line(path, title string, counts []Count) error
}

// Reporter renders the country and month charts into a directory.
type Reporter struct {
	renderer  ChartRenderer
	outputDir string
	logger    *slog.Logger
}

var _ ports.Reporter = (*Reporter)(nil)

// NewReporter writes charts into outputDir using renderer.
func NewReporter(renderer ChartRenderer, outputDir string, log *slog.Logger) *Reporter {
	if outputDir == "" {
		outputDir = "."
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reporter{renderer: renderer, outputDir: outputDir, logger: log}
}

// Report returns the charts that rendered; errors of the others are joined.
func (r *Reporter) Report(ctx context.Context, records []domain.ClassifiedRecord) ([]domain.Attachment, error) {
	if len(records) == 0 {
		return nil, nil
	}

	jobs := []struct {
		file   string
		title  string
		counts []Count
		render func(path, title string, counts []Count) error
	}{
		{CountryChartFile, "Projects by country", ByCountry(records), r.renderer.Bar},
		{MonthChartFile, "Projects by month", ByMonth(records), r.renderer.Line},
	}

	var (
		attachments []domain.Attachment
		errs        []error
	)
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if len(job.counts) == 0 {
			continue
		}
		path := filepath.Join(r.outputDir, job.file)
		if err := job.render(path, job.title, job.counts); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.file, err))
			continue
		}
		attachments = append(attachments, domain.Attachment{Name: job.file, Path: path})
		r.logger.Debug("chart rendered", "path", path, "buckets", len(job.counts))
	}

	return attachments, errors.Join(errs...)
}
