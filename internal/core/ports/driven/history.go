package driven

import (
	"context"

	"github.com/kbase-labs/kbase/internal/core/domain"
)

// IngestHistory journals ingest attempts for inspection. The journal is
// advisory: failures to record never abort an ingest.
type IngestHistory interface {
	// Record appends one ingest attempt to the journal.
	Record(ctx context.Context, rec domain.IngestRecord) error

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]domain.IngestRecord, error)

	// Close releases resources.
	Close() error
}
