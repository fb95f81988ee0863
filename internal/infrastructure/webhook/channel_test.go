package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"TenderMonitor/internal/config"
	"TenderMonitor/internal/domain"
)

type captured struct {
	mu       sync.Mutex
	messages []string
	files    map[string]string
}

func newServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{files: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.mu.Lock()
		defer got.mu.Unlock()

		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var payload struct {
				Content string `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			got.messages = append(got.messages, payload.Content)
		} else {
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Errorf("form file: %v", err)
			} else {
				data, _ := io.ReadAll(file)
				got.files[header.Filename] = string(data)
			}
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func TestDeliverPostsMessageAndAttachments(t *testing.T) {
	t.Parallel()

	server, got := newServer(t, http.StatusNoContent)

	chart := filepath.Join(t.TempDir(), "c.png")
	if err := os.WriteFile(chart, []byte("chart-bytes"), 0o600); err != nil {
		t.Fatalf("write chart: %v", err)
	}

	ch := NewChannel(config.WebhookConfig{URL: server.URL}, nil)
	if !ch.Enabled() {
		t.Fatal("expected channel to be enabled")
	}

	err := ch.Deliver(context.Background(), domain.Digest{
		High:        []domain.ClassifiedRecord{{Title: "Hot", Link: "https://x/1", HighPotential: true}},
		Normal:      []domain.ClassifiedRecord{{Title: "Cold", Link: "https://x/2"}},
		Attachments: []domain.Attachment{{Name: "projects_by_country.png", Path: chart}},
	})
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	if len(got.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got.messages))
	}
	msg := got.messages[0]
	if strings.Index(msg, "Hot") > strings.Index(msg, "Cold") {
		t.Fatalf("high potential records must come first: %q", msg)
	}
	if !strings.Contains(msg, "• Hot → https://x/1") {
		t.Fatalf("unexpected layout: %q", msg)
	}
	if got.files["projects_by_country.png"] != "chart-bytes" {
		t.Fatalf("attachment not uploaded: %v", got.files)
	}
}

func TestDeliverSplitsLongContent(t *testing.T) {
	t.Parallel()

	server, got := newServer(t, http.StatusOK)

	var records []domain.ClassifiedRecord
	for i := 0; i < 30; i++ {
		records = append(records, domain.ClassifiedRecord{
			Title: strings.Repeat("t", 50),
			Link:  "https://example.com/" + strings.Repeat("p", 40),
		})
	}

	ch := NewChannel(config.WebhookConfig{URL: server.URL, MaxContentLength: 500}, nil)
	if err := ch.Deliver(context.Background(), domain.Digest{Normal: records}); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	if len(got.messages) < 2 {
		t.Fatalf("expected several parts, got %d", len(got.messages))
	}
	for _, m := range got.messages {
		if n := utf8.RuneCountInString(m); n > 500 {
			t.Fatalf("part exceeds limit: %d runes", n)
		}
	}
}

func TestDeliverReportsHTTPError(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusTooManyRequests)

	ch := NewChannel(config.WebhookConfig{URL: server.URL}, nil)
	err := ch.Deliver(context.Background(), domain.Digest{Normal: []domain.ClassifiedRecord{{Title: "x", Link: "https://x"}}})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestDisabledWithoutURL(t *testing.T) {
	t.Parallel()

	if NewChannel(config.WebhookConfig{}, nil).Enabled() {
		t.Fatal("expected channel to be disabled")
	}
}
