package domain

// Attachment is a file produced for a notification, e.g. a summary chart.
type Attachment struct {
	Name string
	Path string
}

// Digest is what a channel receives: new records split for presentation.
type Digest struct {
	Subject     string
	High        []ClassifiedRecord
	Normal      []ClassifiedRecord
	Attachments []Attachment
}

// Len is the total number of records in the digest.
func (d Digest) Len() int {
	return len(d.High) + len(d.Normal)
}

// DeliveryStatus enumerates per-channel notification results.
type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "delivered"
	StatusDisabled  DeliveryStatus = "disabled"
	StatusFailed    DeliveryStatus = "failed"
)

// ChannelOutcome reports what happened on one notification channel.
type ChannelOutcome struct {
	Channel string
	Status  DeliveryStatus
	Err     error
}
