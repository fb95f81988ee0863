package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, logLevelEnv, logFormatEnv, emailUserEnv, emailPassEnv, emailToEnv, smtpHostEnv, smtpPortEnv,
		webhookURLEnv, discordWebhookEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Poland", cfg.Classifier.Countries[0].Name)
	assert.Len(t, cfg.Sources, 10)

	v, err := cfg.Classifier.Vocabulary()
	require.NoError(t, err)
	assert.Equal(t, "all", string(v.Policy))
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
fetch:
  retryDelay: 2s
  concurrency: 4
classifier:
  policy: tender
sources:
  - name: Local
    url: https://example.com/feed.xml
  - name: Board
    url: https://example.com/tenders
    scanner: html
    options:
      selector: "table a"
report:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(configPathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Fetch.RetryDelay)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts, "unset fields keep defaults")
	assert.Equal(t, "tender", cfg.Classifier.Policy)
	assert.NotEmpty(t, cfg.Classifier.Countries)
	assert.False(t, cfg.Report.Enabled)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "rss", cfg.Sources[0].Scanner)
	assert.Equal(t, "html", cfg.Sources[1].Scanner)
	assert.Equal(t, "table a", cfg.Sources[1].Options["selector"])
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(emailUserEnv, "monitor@example.com")
	t.Setenv(emailPassEnv, "secret")
	t.Setenv(discordWebhookEnv, "https://discord.example/hook")
	t.Setenv(telegramTokenEnv, "token")
	t.Setenv(telegramChatIDEnv, "42")
	t.Setenv(logLevelEnv, "debug")

	cfg, err := Load()
	require.NoError(t, err)

	email := cfg.Notifications.Email
	assert.Equal(t, "monitor@example.com", email.From)
	assert.Equal(t, []string{"monitor@example.com"}, email.To)
	assert.Equal(t, "secret", email.Password)
	assert.Equal(t, "https://discord.example/hook", cfg.Notifications.Webhook.URL)
	assert.Equal(t, "42", cfg.Notifications.Telegram.ChatID)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv(webhookURLEnv, "https://primary.example/hook")
	t.Setenv(emailToEnv, "a@example.com, b@example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example/hook", cfg.Notifications.Webhook.URL)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notifications.Email.To)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch: [unclosed"), 0o600))
	t.Setenv(configPathEnv, path)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Classifier.Policy = "most"
	cfg.Classifier.Countries = nil
	cfg.Fetch.MaxAttempts = 0
	cfg.Sources = []SourceConfig{{Name: "empty"}}

	err := cfg.Validate()
	require.Error(t, err)
	for _, fragment := range []string{"most", "countries", "maxAttempts", "no url"} {
		assert.Contains(t, err.Error(), fragment)
	}
}
