package ports

import (
	"context"

	"TenderMonitor/internal/domain"
)

// SourceFetcher pulls entries from every configured source, one result per source.
type SourceFetcher interface {
	FetchAll(ctx context.Context, sources []domain.Source) []domain.FetchResult
}

// EntryClassifier maps entry text to a country and relevance flags.
type EntryClassifier interface {
	Classify(text string) domain.Classification
}

// RecordStore persists the accumulated record table as a whole.
type RecordStore interface {
	Load(ctx context.Context) ([]domain.ClassifiedRecord, error)
	Save(ctx context.Context, records []domain.ClassifiedRecord) error
}

// SeenStore persists the set of already delivered links.
type SeenStore interface {
	Load(ctx context.Context) (*domain.SeenSet, error)
	Save(ctx context.Context, seen *domain.SeenSet) error
}

// Channel delivers a digest through one medium (email, webhook, ...).
type Channel interface {
	Name() string
	// Enabled is false when the channel lacks configuration.
	Enabled() bool
	Deliver(ctx context.Context, digest domain.Digest) error
}

// Notifier fans new records out to every channel.
type Notifier interface {
	Notify(ctx context.Context, records []domain.ClassifiedRecord, attachments []domain.Attachment) []domain.ChannelOutcome
}

// Reporter derives attachment artifacts from the full record table.
type Reporter interface {
	Report(ctx context.Context, records []domain.ClassifiedRecord) ([]domain.Attachment, error)
}

// Metrics receives run counters.
type Metrics interface {
	FetchAttempt(source string)
	FetchFailed(source string)
	Entry(source string, outcome domain.EntryOutcome)
	ChannelDelivery(channel string, status domain.DeliveryStatus)
}
