package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// GormLedgerSnapshotRepository stores serialized ledgers, one row per kind
type GormLedgerSnapshotRepository struct {
	db *gorm.DB
}

// NewGormLedgerSnapshotRepository creates a new GORM ledger snapshot repository
func NewGormLedgerSnapshotRepository(db *gorm.DB) *GormLedgerSnapshotRepository {
	return &GormLedgerSnapshotRepository{db: db}
}

// Save replaces every row of the snapshot's owner in one transaction
func (r *GormLedgerSnapshotRepository) Save(ctx context.Context, snapshot common.LedgerSnapshot) error {
	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_type = ? AND owner_key = ?", string(snapshot.Owner.Type), snapshot.Owner.Key).
			Delete(&LedgerEntryModel{}).Error; err != nil {
			return err
		}

		rows := make([]LedgerEntryModel, 0, len(snapshot.Amounts))
		for _, kind := range resource.SortKinds(kindsOf(snapshot.Amounts)) {
			rows = append(rows, LedgerEntryModel{
				OwnerType: string(snapshot.Owner.Type),
				OwnerKey:  snapshot.Owner.Key,
				Kind:      string(kind),
				Amount:    snapshot.Amounts[kind],
				SavedAt:   savedAt,
			})
		}
		if len(rows) == 0 {
			// an empty ledger still needs a marker row so ListOwners sees it
			rows = append(rows, LedgerEntryModel{
				OwnerType: string(snapshot.Owner.Type),
				OwnerKey:  snapshot.Owner.Key,
				SavedAt:   savedAt,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for owner
func (r *GormLedgerSnapshotRepository) Load(ctx context.Context, owner events.Owner) (common.LedgerSnapshot, bool, error) {
	var models []LedgerEntryModel
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_key = ?", string(owner.Type), owner.Key).
		Order("kind ASC").
		Find(&models).Error
	if err != nil {
		return common.LedgerSnapshot{}, false, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	if len(models) == 0 {
		return common.LedgerSnapshot{}, false, nil
	}

	snap := common.LedgerSnapshot{
		Owner:   owner,
		Amounts: make(map[resource.Kind]uint32, len(models)),
		SavedAt: models[0].SavedAt,
	}
	for _, m := range models {
		if m.Kind == "" {
			continue
		}
		snap.Amounts[resource.Kind(m.Kind)] = m.Amount
	}
	return snap, true, nil
}

// ListOwners returns every owner with stored rows, structures before workers
func (r *GormLedgerSnapshotRepository) ListOwners(ctx context.Context) ([]events.Owner, error) {
	var rows []struct {
		OwnerType string
		OwnerKey  string
	}
	err := r.db.WithContext(ctx).
		Model(&LedgerEntryModel{}).
		Distinct("owner_type", "owner_key").
		Order("owner_type ASC, owner_key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger owners: %w", err)
	}

	owners := make([]events.Owner, 0, len(rows))
	for _, row := range rows {
		owners = append(owners, events.Owner{Type: events.OwnerType(row.OwnerType), Key: row.OwnerKey})
	}
	return owners, nil
}

func kindsOf(m map[resource.Kind]uint32) []resource.Kind {
	out := make([]resource.Kind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
