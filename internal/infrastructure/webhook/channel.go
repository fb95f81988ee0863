package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"TenderMonitor/internal/config"
	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
	"TenderMonitor/internal/render"
)

const defaultMaxContentLength = 2000

// Channel posts digests to a chat webhook (Discord compatible).
type Channel struct {
	url        string
	maxContent int
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.Channel = (*Channel)(nil)

// NewChannel builds the webhook channel from config.
func NewChannel(cfg config.WebhookConfig, log *slog.Logger) *Channel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxContent := cfg.MaxContentLength
	if maxContent <= 0 {
		maxContent = defaultMaxContentLength
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Channel{
		url:        cfg.URL,
		maxContent: maxContent,
		client:     &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Name identifies the channel in run reports.
func (c *Channel) Name() string {
	return "webhook"
}

// Enabled reports whether a webhook URL is configured.
func (c *Channel) Enabled() bool {
	return c.url != ""
}

// Deliver posts the text in chunks, then each attachment as a separate upload.
func (c *Channel) Deliver(ctx context.Context, digest domain.Digest) error {
	chunks := render.Chunk(render.Text(digest, "**"), c.maxContent)
	for i, chunk := range chunks {
		payload, err := json.Marshal(map[string]string{"content": chunk})
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		if err := c.post(ctx, "application/json", bytes.NewReader(payload)); err != nil {
			return fmt.Errorf("post message part %d: %w", i+1, err)
		}
	}

	for _, att := range digest.Attachments {
		if err := c.upload(ctx, att); err != nil {
			return fmt.Errorf("upload %s: %w", att.Name, err)
		}
	}
	c.logger.Debug("webhook delivered", "parts", len(chunks), "attachments", len(digest.Attachments))
	return nil
}

func (c *Channel) upload(ctx context.Context, att domain.Attachment) error {
	f, err := os.Open(att.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", att.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	return c.post(ctx, form.FormDataContentType(), &body)
}

func (c *Channel) post(ctx context.Context, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook error: %s", resp.Status)
	}
	return nil
}
