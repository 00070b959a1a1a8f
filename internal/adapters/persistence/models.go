package persistence

import (
	"time"
)

// LedgerEntryModel represents the ledger_entries table: one row per owner
// and resource kind
type LedgerEntryModel struct {
	OwnerType string    `gorm:"column:owner_type;primaryKey;not null"`
	OwnerKey  string    `gorm:"column:owner_key;primaryKey;not null"`
	Kind      string    `gorm:"column:kind;primaryKey;not null"`
	Amount    uint32    `gorm:"column:amount;not null;default:0"`
	SavedAt   time.Time `gorm:"column:saved_at;not null"`
}

func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// WorkerAssignmentModel represents the worker_assignments table
type WorkerAssignmentModel struct {
	WorkerID      string     `gorm:"column:worker_id;primaryKey;not null"`
	StructureKey  string     `gorm:"column:structure_key;not null;index"`
	Status        string     `gorm:"column:status;not null;default:'active'"`
	AssignedAt    time.Time  `gorm:"column:assigned_at;not null"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
	ReleaseReason *string    `gorm:"column:release_reason"`
}

func (WorkerAssignmentModel) TableName() string {
	return "worker_assignments"
}

// ResourceJournalModel represents the resource_journal table
type ResourceJournalModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerType string    `gorm:"column:owner_type;not null;index:idx_journal_owner,priority:1"`
	OwnerKey  string    `gorm:"column:owner_key;not null;index:idx_journal_owner,priority:2"`
	Kind      string    `gorm:"column:kind;not null"`
	Previous  uint32    `gorm:"column:previous;not null"`
	New       uint32    `gorm:"column:new_amount;not null"`
	Delta     int64     `gorm:"column:delta;not null"`
	At        time.Time `gorm:"column:at;not null;index"`
}

func (ResourceJournalModel) TableName() string {
	return "resource_journal"
}

// Models lists every table for AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&LedgerEntryModel{},
		&WorkerAssignmentModel{},
		&ResourceJournalModel{},
	}
}

// TableNames lists every table name, children first
func TableNames() []string {
	return []string{
		ResourceJournalModel{}.TableName(),
		WorkerAssignmentModel{}.TableName(),
		LedgerEntryModel{}.TableName(),
	}
}
