package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/query"
)

// Run describes one conversion run. Every stored record carries its run ID
// so several runs can share a database.
type Run struct {
	ID      uuid.UUID
	Started time.Time
	Type    string
	Zone    string
	Skew    int32
}

// Entry is a record together with where it came from.
type Entry struct {
	SourceFile string
	Line       int
	Record     model.Record
}

// Store persists emitted records. Records are kept in arrival order and
// never deduplicated.
type Store interface {
	// BeginRun registers a run before its records are inserted.
	BeginRun(ctx context.Context, run Run) error
	// InsertRecords writes a batch of entries for a run in one transaction.
	InsertRecords(ctx context.Context, runID uuid.UUID, entries []Entry) (int, error)
	// CountRecords returns how many records a run stored.
	CountRecords(ctx context.Context, runID uuid.UUID) (int64, error)
	// QueryRecords returns a run's records matching filter, in insertion
	// order. A nil filter matches every record.
	QueryRecords(ctx context.Context, runID uuid.UUID, filter *query.Predicate, limit, offset int) ([]Entry, error)
	// Runs lists the runs in the database, oldest first.
	Runs(ctx context.Context) ([]Run, error)

	Close() error
	Path() string
}
