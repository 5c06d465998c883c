// Package sqlite provides an SQLite-backed ingest history journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
)

// Ensure History implements the interface.
var _ driven.IngestHistory = (*History)(nil)

// DefaultListLimit caps List when the caller passes limit <= 0.
const DefaultListLimit = 50

// History journals ingest attempts in an SQLite database.
type History struct {
	db *sql.DB
}

// New opens (or creates) the journal database at dbPath.
func New(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	h := &History{db: db}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) migrate() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS ingest_history (
			id TEXT PRIMARY KEY,
			file_path TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			chunk_count INTEGER NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_ingest_history_started_at
			ON ingest_history (started_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("migrating ingest history: %w", err)
	}
	return nil
}

// Record appends one ingest attempt to the journal.
func (h *History) Record(ctx context.Context, rec domain.IngestRecord) error {
	if rec.ID == "" || rec.FilePath == "" {
		return domain.ErrInvalidInput
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO ingest_history (id, file_path, succeeded, chunk_count, error, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.FilePath, boolToInt(rec.Succeeded), rec.ChunkCount,
		nullString(rec.Error), rec.Duration.Milliseconds(),
		rec.StartedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("recording ingest attempt: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (h *History) List(ctx context.Context, limit int) ([]domain.IngestRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, file_path, succeeded, chunk_count, error, duration_ms, started_at
		FROM ingest_history
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest history: %w", err)
	}
	defer rows.Close()

	var records []domain.IngestRecord
	for rows.Next() {
		var (
			rec        domain.IngestRecord
			succeeded  int
			errText    sql.NullString
			durationMS int64
			startedAt  string
		)
		if err := rows.Scan(&rec.ID, &rec.FilePath, &succeeded, &rec.ChunkCount,
			&errText, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning ingest record: %w", err)
		}
		rec.Succeeded = succeeded != 0
		rec.Error = errText.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			rec.StartedAt = ts
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest history: %w", err)
	}
	return records, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
