package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TenderMonitor/internal/classifier"
	"TenderMonitor/pkg/logger"
)

const (
	configPathEnv     = "TENDER_MONITOR_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	emailUserEnv      = "EMAIL_USER"
	emailPassEnv      = "EMAIL_PASS"
	emailToEnv        = "EMAIL_TO"
	smtpHostEnv       = "SMTP_HOST"
	smtpPortEnv       = "SMTP_PORT"
	webhookURLEnv     = "WEBHOOK_URL"
	discordWebhookEnv = "DISCORD_WEBHOOK_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	defaultDotEnvFile = ".env"
	defaultSubject    = "📡 New data center projects: CSA/MEP"
)

// Config holds every setting of a monitoring run.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Limits        LimitsConfig       `yaml:"limits"`
	Storage       StorageConfig      `yaml:"storage"`
	Report        ReportConfig       `yaml:"report"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is text (default) or json.
	Format string `yaml:"format"`
}

// FetchConfig bounds retries and parallelism of source fetches.
type FetchConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	UserAgent   string        `yaml:"userAgent"`
}

// ClassifierConfig is the keyword vocabulary. Countries are matched in the
// order listed here: the first country with a matching keyword wins.
type ClassifierConfig struct {
	Policy        string          `yaml:"policy"`
	Countries     []CountryConfig `yaml:"countries"`
	Anchors       []string        `yaml:"anchors"`
	Tender        []string        `yaml:"tender"`
	Service       []string        `yaml:"service"`
	Organizations []string        `yaml:"organizations"`
}

// CountryConfig maps a country to its place-name keywords.
type CountryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Vocabulary converts the configuration into classifier input.
func (c ClassifierConfig) Vocabulary() (classifier.Vocabulary, error) {
	policy, err := classifier.ParsePolicy(c.Policy)
	if err != nil {
		return classifier.Vocabulary{}, err
	}
	countries := make([]classifier.Country, 0, len(c.Countries))
	for _, country := range c.Countries {
		countries = append(countries, classifier.Country{Name: country.Name, Keywords: country.Keywords})
	}
	return classifier.Vocabulary{
		Policy:        policy,
		Countries:     countries,
		Anchors:       c.Anchors,
		Tender:        c.Tender,
		Service:       c.Service,
		Organizations: c.Organizations,
	}, nil
}

// LimitsConfig caps stored title and summary lengths in runes.
type LimitsConfig struct {
	TitleLength   int `yaml:"titleLength"`
	SummaryLength int `yaml:"summaryLength"`
}

// StorageConfig locates the state files. The records backend follows the
// file extension: .csv, .xlsx or .db/.sqlite.
type StorageConfig struct {
	RecordsPath string `yaml:"recordsPath"`
	SeenPath    string `yaml:"seenPath"`
	LockFile    string `yaml:"lockFile"`
}

// ReportConfig controls the chart attachments.
type ReportConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"outputDir"`
}

// MetricsConfig enables the node_exporter textfile output when the path is set.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Subject  string         `yaml:"subject"`
	Email    EmailConfig    `yaml:"email"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// EmailConfig describes the SMTP relay. From defaults to Username and To to From.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	// TLS is one of starttls (default), tls, none.
	TLS     string        `yaml:"tls"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebhookConfig describes a Discord-compatible webhook.
type WebhookConfig struct {
	URL              string        `yaml:"url"`
	MaxContentLength int           `yaml:"maxContentLength"`
	Timeout          time.Duration `yaml:"timeout"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	Endpoint string `yaml:"endpoint"`
}

// SourceConfig is one feed; Scanner selects the fetch strategy (rss or html).
type SourceConfig struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Scanner string            `yaml:"scanner"`
	Options map[string]string `yaml:"options"`
}

// Load reads .env, the YAML file named by TENDER_MONITOR_CONFIG (if any) over
// the defaults, then applies environment overrides and validates the result.
func Load() (Config, error) {
	log := logger.New("config")

	if err := godotenv.Load(defaultDotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot read %s: %v", defaultDotEnvFile, err)
	}

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Printf("loaded %s (%d sources)", path, len(cfg.Sources))
	}

	cfg.applyEnvOverrides()
	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(emailUserEnv); v != "" {
		c.Notifications.Email.Username = v
	}
	if v := os.Getenv(emailPassEnv); v != "" {
		c.Notifications.Email.Password = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		c.Notifications.Email.To = splitList(v)
	}
	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Notifications.Email.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Notifications.Email.Port = port
		}
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.Webhook.URL = v
	} else if v := os.Getenv(discordWebhookEnv); v != "" {
		c.Notifications.Webhook.URL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) applyFallbacks() {
	email := &c.Notifications.Email
	if email.From == "" {
		email.From = email.Username
	}
	if len(email.To) == 0 && email.From != "" {
		email.To = []string{email.From}
	}
	for i := range c.Sources {
		if c.Sources[i].Scanner == "" {
			c.Sources[i].Scanner = "rss"
		}
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := classifier.ParsePolicy(c.Classifier.Policy); err != nil {
		errs = append(errs, err)
	}
	if len(c.Classifier.Countries) == 0 {
		errs = append(errs, errors.New("classifier.countries must not be empty"))
	}
	for i, country := range c.Classifier.Countries {
		if strings.TrimSpace(country.Name) == "" {
			errs = append(errs, fmt.Errorf("classifier.countries[%d] has no name", i))
		}
	}
	if c.Fetch.MaxAttempts <= 0 {
		errs = append(errs, errors.New("fetch.maxAttempts must be positive"))
	}
	if c.Fetch.RetryDelay < 0 || c.Fetch.Timeout < 0 {
		errs = append(errs, errors.New("fetch durations must not be negative"))
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("sources must not be empty"))
	}
	for i, src := range c.Sources {
		if strings.TrimSpace(src.URL) == "" {
			errs = append(errs, fmt.Errorf("sources[%d] (%s) has no url", i, src.Name))
		}
	}
	if c.Storage.RecordsPath == "" || c.Storage.SeenPath == "" {
		errs = append(errs, errors.New("storage.recordsPath and storage.seenPath are required"))
	}

	return errors.Join(errs...)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
