package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

type fakeChannel struct {
	name    string
	enabled bool
	err     error
	got     []domain.Digest
}

func (c *fakeChannel) Name() string  { return c.name }
func (c *fakeChannel) Enabled() bool { return c.enabled }

func (c *fakeChannel) Deliver(_ context.Context, digest domain.Digest) error {
	c.got = append(c.got, digest)
	return c.err
}

type deliveryMetrics struct {
	statuses map[string]domain.DeliveryStatus
}

func (m *deliveryMetrics) FetchAttempt(string) {}

func (m *deliveryMetrics) FetchFailed(string) {}

func (m *deliveryMetrics) Entry(string, domain.EntryOutcome) {}

func (m *deliveryMetrics) ChannelDelivery(ch string, s domain.DeliveryStatus) {
	if m.statuses == nil {
		m.statuses = map[string]domain.DeliveryStatus{}
	}
	m.statuses[ch] = s
}

func TestDispatcherChannelIndependence(t *testing.T) {
	t.Parallel()

	email := &fakeChannel{name: "email"}
	broken := &fakeChannel{name: "telegram", enabled: true, err: errors.New("502 bad gateway")}
	webhook := &fakeChannel{name: "webhook", enabled: true}
	metrics := &deliveryMetrics{}

	d := NewDispatcher("", []ports.Channel{email, broken, webhook}, metrics, nil)

	records := []domain.ClassifiedRecord{
		{Title: "normal", Link: "https://x/1"},
		{Title: "hot", Link: "https://x/2", HighPotential: true},
	}
	attachments := []domain.Attachment{{Name: "projects_by_month.png", Path: "/tmp/projects_by_month.png"}}

	outcomes := d.Notify(context.Background(), records, attachments)
	require.Len(t, outcomes, 3)

	assert.Equal(t, domain.StatusDisabled, outcomes[0].Status)
	assert.Empty(t, email.got)

	assert.Equal(t, domain.StatusFailed, outcomes[1].Status)
	assert.Error(t, outcomes[1].Err)

	assert.Equal(t, domain.StatusDelivered, outcomes[2].Status)
	require.Len(t, webhook.got, 1)
	digest := webhook.got[0]
	assert.Equal(t, DefaultSubject, digest.Subject)
	require.Len(t, digest.High, 1)
	assert.Equal(t, "hot", digest.High[0].Title)
	require.Len(t, digest.Normal, 1)
	assert.Equal(t, attachments, digest.Attachments)

	assert.Equal(t, domain.StatusFailed, metrics.statuses["telegram"])
	assert.Equal(t, domain.StatusDelivered, metrics.statuses["webhook"])
}
