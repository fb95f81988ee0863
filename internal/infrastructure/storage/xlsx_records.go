package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

const recordsSheet = "Records"

// XLSXRecordStore keeps the record table in a spreadsheet workbook.
// Only the first sheet is read; Save always writes a single Records sheet.
type XLSXRecordStore struct {
	path string
}

var _ ports.RecordStore = (*XLSXRecordStore)(nil)

// NewXLSXRecordStore returns a record store backed by an Excel workbook.
func NewXLSXRecordStore(path string) *XLSXRecordStore {
	return &XLSXRecordStore{path: path}
}

// Load reads the first sheet. A missing file yields no records.
func (s *XLSXRecordStore) Load(_ context.Context) ([]domain.ClassifiedRecord, error) {
	exists, err := fileExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat records %s: %w", s.path, err)
	}
	if !exists {
		return nil, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	records, err := decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("records %s: %w", s.path, err)
	}
	return records, nil
}

// Save rewrites the workbook with a single Records sheet.
func (s *XLSXRecordStore) Save(_ context.Context, records []domain.ClassifiedRecord) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, recordColumns); err != nil {
		return err
	}
	for i, rec := range records {
		if err := setRow(f, i+2, encodeRow(rec)); err != nil {
			return err
		}
	}

	return writeFileAtomic(s.path, func(w io.Writer) error {
		if _, err := f.WriteTo(w); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	})
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(recordsSheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
