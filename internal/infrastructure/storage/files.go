package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

// ErrCorrupt marks a state file that exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt state file")

// Canonical record columns, in persisted order.
const (
	colRetrievedAt   = "retrieved_at"
	colCountry       = "country"
	colTitle         = "title"
	colSummary       = "summary"
	colLink          = "link"
	colHighPotential = "high_potential"
)

var recordColumns = []string{colRetrievedAt, colCountry, colTitle, colSummary, colLink, colHighPotential}

// legacyColumns maps the header of older monitoring spreadsheets onto canonical names.
var legacyColumns = map[string]string{
	"data":          colRetrievedAt,
	"kraj":          colCountry,
	"firma":         colTitle,
	"opis":          colSummary,
	"warto_analizy": colHighPotential,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewRecordStore picks a backend from the file extension.
func NewRecordStore(path string) (ports.RecordStore, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVRecordStore(path), nil
	case ".xlsx":
		return NewXLSXRecordStore(path), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteRecordStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported record store format %q", path)
	}
}

// headerIndex resolves column positions, accepting legacy header names.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(recordColumns))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if canonical, ok := legacyColumns[name]; ok {
			name = canonical
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range recordColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrCorrupt, col)
		}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// decodeRows converts tabular rows (header first) into records. Rows without a link are dropped.
func decodeRows(rows [][]string) ([]domain.ClassifiedRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]domain.ClassifiedRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		link := strings.TrimSpace(cell(row, idx[colLink]))
		if link == "" {
			continue
		}

		at, err := parseTime(cell(row, idx[colRetrievedAt]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorrupt, n+2, err)
		}
		flag, err := parseFlag(cell(row, idx[colHighPotential]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorrupt, n+2, err)
		}

		records = append(records, domain.ClassifiedRecord{
			RetrievedAt:   at,
			Country:       cell(row, idx[colCountry]),
			Title:         cell(row, idx[colTitle]),
			Summary:       cell(row, idx[colSummary]),
			Link:          link,
			HighPotential: flag,
		})
	}
	return records, nil
}

func encodeRow(rec domain.ClassifiedRecord) []string {
	return []string{
		formatTime(rec.RetrievedAt),
		rec.Country,
		rec.Title,
		rec.Summary,
		rec.Link,
		strconv.FormatBool(rec.HighPotential),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func parseFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "tak":
		return true, nil
	case "", "false", "0", "no", "n", "nie":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognised flag %q", value)
	}
}

// writeFileAtomic writes through a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
