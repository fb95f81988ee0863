package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"TenderMonitor/internal/config"
	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
	"TenderMonitor/internal/render"
)

// Channel sends digests over authenticated SMTP.
type Channel struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

var _ ports.Channel = (*Channel)(nil)

// NewChannel builds the SMTP channel from config.
func NewChannel(cfg config.EmailConfig, log *slog.Logger) *Channel {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Channel{cfg: cfg, logger: log}
}

// Name identifies the channel in run reports.
func (c *Channel) Name() string {
	return "email"
}

// Enabled is true once credentials, a relay and a recipient are known.
func (c *Channel) Enabled() bool {
	return c.cfg.Username != "" && c.cfg.Password != "" && c.cfg.Host != "" && len(c.cfg.To) > 0
}

// Deliver sends one message with the digest and its attachments.
func (c *Channel) Deliver(ctx context.Context, digest domain.Digest) error {
	msg, err := c.buildMessage(digest)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(c.cfg.Host, c.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", c.cfg.Host, err)
	}
	c.logger.Debug("mail sent", "to", strings.Join(c.cfg.To, ","), "attachments", len(digest.Attachments))
	return nil
}

func (c *Channel) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.Username),
		mail.WithPassword(c.cfg.Password),
	}
	if c.cfg.Port > 0 {
		opts = append(opts, mail.WithPort(c.cfg.Port))
	}
	if c.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(c.cfg.Timeout))
	}

	switch strings.ToLower(c.cfg.TLS) {
	case "tls", "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return opts
}

func (c *Channel) buildMessage(digest domain.Digest) (*mail.Msg, error) {
	from := c.cfg.From
	if from == "" {
		from = c.cfg.Username
	}
	if from == "" || len(c.cfg.To) == 0 {
		return nil, errors.New("email sender or recipients missing")
	}

	body, err := render.HTML(digest)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := msg.To(c.cfg.To...); err != nil {
		return nil, fmt.Errorf("recipients: %w", err)
	}
	msg.Subject(digest.Subject)
	msg.SetBodyString(mail.TypeTextPlain, render.Plain(digest))
	msg.AddAlternativeString(mail.TypeTextHTML, body)

	for _, att := range digest.Attachments {
		msg.AttachFile(att.Path, mail.WithFileName(att.Name))
	}
	return msg, nil
}
