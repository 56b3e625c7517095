// Package reportstore persists batch reports so past runs can be inspected
// after the process exits.
package reportstore

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docnorm/internal/report"
)

// RunRecord is one persisted batch run.
type RunRecord struct {
	BatchID   string
	StartedAt time.Time
	Report    report.BatchReport
}

// Store defines the interface for persisting and retrieving batch runs.
type Store interface {
	// Save persists a completed run.
	Save(ctx context.Context, rec RunRecord) error

	// Get retrieves a run by batch ID.
	Get(ctx context.Context, batchID string) (*RunRecord, error)

	// Recent lists the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]RunRecord, error)

	// Close closes the store and releases resources.
	Close() error
}
