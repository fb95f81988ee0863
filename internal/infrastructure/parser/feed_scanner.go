package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/scanner"
)

const defaultUserAgent = "TenderMonitor/1.0"

// FeedScanner reads RSS, Atom and JSON feeds.
type FeedScanner struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires an HTTP client; a nil client gets a 30s timeout.
func NewFeedScanner(client *http.Client, userAgent string, log *slog.Logger) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &FeedScanner{client: client, userAgent: userAgent, logger: log}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "rss"
}

// Scan downloads and parses the feed. Items without a usable link are skipped.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.FeedEntry, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("source %s has no url", req.SourceName)
	}

	fp := gofeed.NewParser()
	fp.Client = f.client
	fp.UserAgent = f.userAgent

	feed, err := fp.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	entries := make([]domain.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		link := extractLink(item)
		if link == "" {
			f.debug("skip item without link", "source", req.SourceName, "title", item.Title)
			continue
		}

		summary := item.Description
		if strings.TrimSpace(summary) == "" {
			summary = item.Content
		}

		entries = append(entries, domain.FeedEntry{
			Source:      req.SourceName,
			Title:       plainText(item.Title),
			Summary:     plainText(summary),
			Link:        link,
			PublishedAt: publishedAt(item),
		})
	}

	f.debug("feed parsed", "source", req.SourceName, "items", len(feed.Items), "entries", len(entries))
	return entries, nil
}

func (f *FeedScanner) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// extractLink prefers the explicit link and falls back to an http GUID.
func extractLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	if guid := strings.TrimSpace(item.GUID); strings.HasPrefix(guid, "http") {
		return guid
	}
	return ""
}

func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

// plainText strips markup from feed fields and collapses whitespace.
func plainText(value string) string {
	if strings.ContainsRune(value, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(value)); err == nil {
			value = doc.Text()
		}
	}
	return strings.Join(strings.Fields(value), " ")
}
