package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// FeedEntry is a raw item returned by a source fetch.
type FeedEntry struct {
	Source      string
	Title       string
	Summary     string
	Link        string
	PublishedAt *time.Time
}

// Identity returns the trimmed link; empty means the entry cannot be tracked.
func (e FeedEntry) Identity() string {
	return strings.TrimSpace(e.Link)
}

// Text is the haystack used for keyword matching.
func (e FeedEntry) Text() string {
	return e.Title + " " + e.Summary
}

// ClassifiedRecord is a persisted, classified representation of an accepted entry.
type ClassifiedRecord struct {
	RetrievedAt   time.Time
	Country       string
	Title         string
	Summary       string
	Link          string
	HighPotential bool
}

// Classification is the outcome of running the keyword classifier over an entry.
type Classification struct {
	Country       string
	Candidate     bool
	HighPotential bool
}

// Matched reports whether a country was detected.
func (c Classification) Matched() bool {
	return c.Country != ""
}

// Truncate cuts s to at most limit runes. A non-positive limit disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// MergeRecords appends incoming records to existing ones keyed by Link.
// The first record seen for a link wins; later duplicates are dropped.
// It returns the merged slice and the number of rows actually added.
func MergeRecords(existing, incoming []ClassifiedRecord) ([]ClassifiedRecord, int) {
	merged := make([]ClassifiedRecord, 0, len(existing)+len(incoming))
	index := make(map[string]struct{}, len(existing)+len(incoming))

	for _, rec := range existing {
		if _, ok := index[rec.Link]; ok {
			continue
		}
		index[rec.Link] = struct{}{}
		merged = append(merged, rec)
	}

	added := 0
	for _, rec := range incoming {
		if _, ok := index[rec.Link]; ok {
			continue
		}
		index[rec.Link] = struct{}{}
		merged = append(merged, rec)
		added++
	}

	return merged, added
}

// Partition splits records into high-potential and remaining ones, preserving order.
func Partition(records []ClassifiedRecord) (high, normal []ClassifiedRecord) {
	for _, rec := range records {
		if rec.HighPotential {
			high = append(high, rec)
			continue
		}
		normal = append(normal, rec)
	}
	return high, normal
}

// SeenSet is the durable de-duplication ledger of delivered links.
type SeenSet struct {
	links map[string]struct{}
}

// NewSeenSet builds a set from the provided links.
func NewSeenSet(links ...string) *SeenSet {
	s := &SeenSet{links: make(map[string]struct{}, len(links))}
	for _, link := range links {
		s.Add(link)
	}
	return s
}

// Has reports whether link was already delivered.
func (s *SeenSet) Has(link string) bool {
	_, ok := s.links[link]
	return ok
}

// Add records link; empty links are ignored.
func (s *SeenSet) Add(link string) {
	if link == "" {
		return
	}
	if s.links == nil {
		s.links = map[string]struct{}{}
	}
	s.links[link] = struct{}{}
}

// Len returns the number of tracked links.
func (s *SeenSet) Len() int {
	return len(s.links)
}

// Links returns the tracked links in lexical order.
func (s *SeenSet) Links() []string {
	out := make([]string, 0, len(s.links))
	for link := range s.links {
		out = append(out, link)
	}
	sort.Strings(out)
	return out
}
