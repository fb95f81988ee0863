package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TenderMonitor/internal/config"
	"TenderMonitor/internal/domain"
)

func TestDeliverSendsMessage(t *testing.T) {
	t.Parallel()

	var path, chatID, text string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		chatID = r.PostForm.Get("chat_id")
		text = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewChannel(config.TelegramConfig{BotToken: "abc", ChatID: "42", Endpoint: server.URL + "/"}, nil)
	err := ch.Deliver(context.Background(), domain.Digest{
		Normal: []domain.ClassifiedRecord{{Title: "Oslo campus", Link: "https://x/1"}},
	})
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	if path != "/botabc/sendMessage" {
		t.Fatalf("unexpected path: %s", path)
	}
	if chatID != "42" {
		t.Fatalf("unexpected chat id: %s", chatID)
	}
	if !strings.Contains(text, "• Oslo campus → https://x/1") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestDeliverReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	ch := NewChannel(config.TelegramConfig{BotToken: "bad", ChatID: "1", Endpoint: server.URL}, nil)
	if err := ch.Deliver(context.Background(), domain.Digest{Normal: []domain.ClassifiedRecord{{Title: "x", Link: "https://x"}}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	if NewChannel(config.TelegramConfig{BotToken: "abc"}, nil).Enabled() {
		t.Fatal("chat id is required")
	}
}
