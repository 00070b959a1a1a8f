package common

import (
	"context"
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// LedgerSnapshot is the persisted content of one ledger
type LedgerSnapshot struct {
	Owner   events.Owner
	Amounts map[resource.Kind]uint32
	SavedAt time.Time
}

// LedgerSnapshotRepository persists serialized ledgers of workers and structures
type LedgerSnapshotRepository interface {
	// Save replaces every stored row for the snapshot's owner
	Save(ctx context.Context, snapshot LedgerSnapshot) error

	// Load returns the snapshot for owner; found is false when nothing was saved
	Load(ctx context.Context, owner events.Owner) (snapshot LedgerSnapshot, found bool, err error)

	// ListOwners returns every owner with a stored snapshot
	ListOwners(ctx context.Context) ([]events.Owner, error)
}

// AssignmentRecord is the persisted form of a worker to structure binding
type AssignmentRecord struct {
	WorkerID     string
	StructureKey string
	AssignedAt   time.Time
}

// AssignmentRepository persists active assignments
type AssignmentRepository interface {
	// Upsert stores or replaces the binding of a worker
	Upsert(ctx context.Context, record AssignmentRecord) error

	// Release marks the worker's binding as released
	Release(ctx context.Context, workerID, reason string) error

	// FindActive returns every active binding ordered by worker
	FindActive(ctx context.Context) ([]AssignmentRecord, error)
}

// JournalEntry is one applied resource change kept for auditing
type JournalEntry struct {
	Owner    events.Owner
	Kind     resource.Kind
	Previous uint32
	New      uint32
	Delta    int64
	At       time.Time
}

// ResourceJournalRepository stores applied resource changes
type ResourceJournalRepository interface {
	Append(ctx context.Context, entries []JournalEntry) error
	FindByOwner(ctx context.Context, owner events.Owner, limit int) ([]JournalEntry, error)
}
