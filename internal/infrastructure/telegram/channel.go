package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TenderMonitor/internal/config"
	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
	"TenderMonitor/internal/render"
)

const (
	defaultEndpoint = "https://api.telegram.org"
	maxMessageRunes = 4096
)

// Channel sends digests to a Telegram chat via bot API.
type Channel struct {
	endpoint string
	botToken string
	chatID   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Channel = (*Channel)(nil)

// NewChannel registers bot token and chat identifier.
func NewChannel(cfg config.TelegramConfig, log *slog.Logger) *Channel {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Channel{
		endpoint: endpoint,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   log,
	}
}

// Name identifies the channel in run reports.
func (c *Channel) Name() string {
	return "telegram"
}

// Enabled reports whether both bot token and chat id are set.
func (c *Channel) Enabled() bool {
	return c.botToken != "" && c.chatID != ""
}

// Deliver posts the digest as plain text messages. Attachments are not sent.
func (c *Channel) Deliver(ctx context.Context, digest domain.Digest) error {
	parts := render.Chunk(render.Text(digest, ""), maxMessageRunes)
	for i, part := range parts {
		if err := c.sendMessage(ctx, part); err != nil {
			return fmt.Errorf("message part %d: %w", i+1, err)
		}
	}
	c.logger.Debug("telegram delivered", "parts", len(parts))
	return nil
}

func (c *Channel) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.endpoint, c.botToken)
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
