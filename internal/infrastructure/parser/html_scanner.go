package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/scanner"
)

const (
	defaultAnchorSelector = "a[href]"
	contextSelector       = "article, li, p, td"
	contextMaxRunes       = 400
)

// HTMLScanner extracts linked headlines from a static HTML page.
type HTMLScanner struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLScanner(client *http.Client, userAgent string, log *slog.Logger) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTMLScanner{client: client, userAgent: userAgent, logger: log}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan returns one entry per distinct anchor with visible text. The "selector"
// option overrides the default anchor selector.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.FeedEntry, error) {
	base, err := url.Parse(req.URL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid page url %q", req.URL)
	}

	doc, err := h.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	selector := defaultAnchorSelector
	if v := strings.TrimSpace(req.Options["selector"]); v != "" {
		selector = v
	}

	return extractAnchors(doc, base, req.SourceName, selector), nil
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractAnchors(doc *goquery.Document, base *url.URL, sourceName, selector string) []domain.FeedEntry {
	var (
		entries []domain.FeedEntry
		seen    = map[string]struct{}{}
	)

	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		title := strings.Join(strings.Fields(a.Text()), " ")
		href, _ := a.Attr("href")
		if title == "" || href == "" {
			return
		}

		link, ok := resolveLink(base, href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		entries = append(entries, domain.FeedEntry{
			Source:  sourceName,
			Title:   title,
			Summary: anchorContext(a, title),
			Link:    link,
		})
	})

	return entries
}

func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// anchorContext returns the text of the nearest block around the anchor, minus the title itself.
func anchorContext(a *goquery.Selection, title string) string {
	block := a.Closest(contextSelector)
	if block.Length() == 0 {
		return ""
	}
	text := strings.Join(strings.Fields(block.Text()), " ")
	text = strings.TrimSpace(strings.Replace(text, title, "", 1))
	return domain.Truncate(text, contextMaxRunes)
}
