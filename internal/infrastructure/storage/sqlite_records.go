package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/ports"
)

const (
	recordsTable    = "records"
	insertBatchSize = 100
)

const createRecordsTable = `CREATE TABLE IF NOT EXISTS records (
	retrieved_at   TEXT NOT NULL DEFAULT '',
	country        TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL DEFAULT '',
	summary        TEXT NOT NULL DEFAULT '',
	link           TEXT PRIMARY KEY,
	high_potential INTEGER NOT NULL DEFAULT 0
)`

type recordRow struct {
	RetrievedAt   string `db:"retrieved_at"`
	Country       string `db:"country"`
	Title         string `db:"title"`
	Summary       string `db:"summary"`
	Link          string `db:"link"`
	HighPotential int    `db:"high_potential"`
}

// SQLiteRecordStore keeps the record table in an embedded SQLite database.
// Save replaces the table contents inside a single transaction.
type SQLiteRecordStore struct {
	path string
}

var _ ports.RecordStore = (*SQLiteRecordStore)(nil)

// NewSQLiteRecordStore returns a record store backed by a SQLite database file.
func NewSQLiteRecordStore(path string) *SQLiteRecordStore {
	return &SQLiteRecordStore{path: path}
}

func (s *SQLiteRecordStore) open(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", s.path, err)
	}
	if _, err := db.ExecContext(ctx, createRecordsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return db, nil
}

// Load returns the records in insertion order.
func (s *SQLiteRecordStore) Load(ctx context.Context) ([]domain.ClassifiedRecord, error) {
	exists, err := fileExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat records %s: %w", s.path, err)
	}
	if !exists {
		return nil, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	query, args, err := sq.Select(recordColumns...).From(recordsTable).OrderBy("rowid").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []recordRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	records := make([]domain.ClassifiedRecord, 0, len(rows))
	for _, row := range rows {
		at, err := parseTime(row.RetrievedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: link %s: %v", ErrCorrupt, s.path, row.Link, err)
		}
		records = append(records, domain.ClassifiedRecord{
			RetrievedAt:   at,
			Country:       row.Country,
			Title:         row.Title,
			Summary:       row.Summary,
			Link:          row.Link,
			HighPotential: row.HighPotential != 0,
		})
	}
	return records, nil
}

// Save replaces the table contents in one transaction.
func (s *SQLiteRecordStore) Save(ctx context.Context, records []domain.ClassifiedRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", s.path, err)
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+recordsTable); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		insert := sq.Insert(recordsTable).Options("OR IGNORE").Columns(recordColumns...)
		for _, rec := range records[start:end] {
			insert = insert.Values(
				formatTime(rec.RetrievedAt),
				rec.Country,
				rec.Title,
				rec.Summary,
				rec.Link,
				boolToInt(rec.HighPotential),
			)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
