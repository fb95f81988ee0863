package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

// SeenSetFile stores delivered links as a JSON array of strings.
type SeenSetFile struct {
	path string
}

var _ ports.SeenStore = (*SeenSetFile)(nil)

// NewSeenSetFile returns a seen-set store backed by a JSON file.
func NewSeenSetFile(path string) *SeenSetFile {
	return &SeenSetFile{path: path}
}

// Load returns an empty set when the file does not exist yet.
func (s *SeenSetFile) Load(_ context.Context) (*domain.SeenSet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewSeenSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen set %s: %w", s.path, err)
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return domain.NewSeenSet(links...), nil
}

// Save writes the links as a sorted JSON array, replacing the file atomically.
func (s *SeenSetFile) Save(_ context.Context, seen *domain.SeenSet) error {
	links := []string{}
	if seen != nil {
		links = seen.Links()
	}

	return writeFileAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(links); err != nil {
			return fmt.Errorf("encode seen set: %w", err)
		}
		return nil
	})
}
