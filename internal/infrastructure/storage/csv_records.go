package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

// CSVRecordStore keeps the record table in a comma separated file.
type CSVRecordStore struct {
	path string
}

var _ ports.RecordStore = (*CSVRecordStore)(nil)

// NewCSVRecordStore binds the store to a file path.
func NewCSVRecordStore(path string) *CSVRecordStore {
	return &CSVRecordStore{path: path}
}

// Load reads the whole table. A missing file yields an empty table.
func (s *CSVRecordStore) Load(_ context.Context) ([]domain.ClassifiedRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open records %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	records, err := decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("records %s: %w", s.path, err)
	}
	return records, nil
}

// Save replaces the file with the given table.
func (s *CSVRecordStore) Save(_ context.Context, records []domain.ClassifiedRecord) error {
	return writeFileAtomic(s.path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write(recordColumns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, rec := range records {
			if err := writer.Write(encodeRow(rec)); err != nil {
				return fmt.Errorf("write record %s: %w", rec.Link, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}
