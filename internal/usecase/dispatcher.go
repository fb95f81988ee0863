package usecase

import (
	"context"
	"log/slog"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "📡 New data center projects"

// Dispatcher fans a digest out to every configured channel. Channels are
// independent: a disabled or failing channel does not affect the others.
type Dispatcher struct {
	subject  string
	channels []ports.Channel
	metrics  ports.Metrics
	logger   *slog.Logger
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher builds a notifier over the given channels. Metrics and logger may be nil.
func NewDispatcher(subject string, channels []ports.Channel, metrics ports.Metrics, log *slog.Logger) *Dispatcher {
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{subject: subject, channels: channels, metrics: metrics, logger: log}
}

// Notify delivers records to each channel and reports one outcome per channel.
func (d *Dispatcher) Notify(ctx context.Context, records []domain.ClassifiedRecord, attachments []domain.Attachment) []domain.ChannelOutcome {
	high, normal := domain.Partition(records)
	digest := domain.Digest{
		Subject:     d.subject,
		High:        high,
		Normal:      normal,
		Attachments: attachments,
	}

	outcomes := make([]domain.ChannelOutcome, 0, len(d.channels))
	for _, ch := range d.channels {
		outcome := domain.ChannelOutcome{Channel: ch.Name()}

		if !ch.Enabled() {
			outcome.Status = domain.StatusDisabled
			d.logger.Debug("channel disabled", "channel", ch.Name())
		} else if err := ch.Deliver(ctx, digest); err != nil {
			outcome.Status = domain.StatusFailed
			outcome.Err = err
			d.logger.Error("channel delivery failed", "channel", ch.Name(), "error", err)
		} else {
			outcome.Status = domain.StatusDelivered
			d.logger.Info("digest delivered", "channel", ch.Name(), "records", digest.Len(), "high_potential", len(high))
		}

		if d.metrics != nil {
			d.metrics.ChannelDelivery(outcome.Channel, outcome.Status)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
