package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

const journalBatchSize = 500

// GormResourceJournalRepository appends ledger changes to resource_journal
type GormResourceJournalRepository struct {
	db *gorm.DB
}

// NewGormResourceJournalRepository creates a new GORM journal repository
func NewGormResourceJournalRepository(db *gorm.DB) *GormResourceJournalRepository {
	return &GormResourceJournalRepository{db: db}
}

// Append inserts entries in order
func (r *GormResourceJournalRepository) Append(ctx context.Context, entries []common.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]ResourceJournalModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, ResourceJournalModel{
			OwnerType: string(e.Owner.Type),
			OwnerKey:  e.Owner.Key,
			Kind:      string(e.Kind),
			Previous:  e.Previous,
			New:       e.New,
			Delta:     e.Delta,
			At:        e.At,
		})
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&models, journalBatchSize).Error; err != nil {
		return fmt.Errorf("failed to append resource journal: %w", err)
	}
	return nil
}

// FindByOwner returns the newest entries for owner first
func (r *GormResourceJournalRepository) FindByOwner(ctx context.Context, owner events.Owner, limit int) ([]common.JournalEntry, error) {
	query := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_key = ?", string(owner.Type), owner.Key).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ResourceJournalModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to read resource journal: %w", err)
	}

	entries := make([]common.JournalEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, common.JournalEntry{
			Owner:    events.Owner{Type: events.OwnerType(m.OwnerType), Key: m.OwnerKey},
			Kind:     resource.Kind(m.Kind),
			Previous: m.Previous,
			New:      m.New,
			Delta:    m.Delta,
			At:       m.At,
		})
	}
	return entries, nil
}
