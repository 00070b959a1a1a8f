package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/colony-go/internal/application/common"
)

// GormAssignmentRepository persists worker-structure bindings
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GORM assignment repository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Upsert stores the binding. A released row for the same worker is revived.
func (r *GormAssignmentRepository) Upsert(ctx context.Context, record common.AssignmentRecord) error {
	model := &WorkerAssignmentModel{
		WorkerID:     record.WorkerID,
		StructureKey: record.StructureKey,
		Status:       "active",
		AssignedAt:   record.AssignedAt,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "worker_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"structure_key":  record.StructureKey,
			"status":         "active",
			"assigned_at":    record.AssignedAt,
			"released_at":    nil,
			"release_reason": nil,
		}),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert assignment: %w", err)
	}
	return nil
}

// Release marks the worker's active binding as released
func (r *GormAssignmentRepository) Release(ctx context.Context, workerID, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&WorkerAssignmentModel{}).
		Where("worker_id = ? AND status = ?", workerID, "active").
		Updates(map[string]interface{}{
			"status":         "released",
			"released_at":    now,
			"release_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no active assignment for worker %s", workerID)
	}
	return nil
}

// FindActive returns every active binding ordered by worker
func (r *GormAssignmentRepository) FindActive(ctx context.Context) ([]common.AssignmentRecord, error) {
	var models []WorkerAssignmentModel
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("worker_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active assignments: %w", err)
	}

	records := make([]common.AssignmentRecord, 0, len(models))
	for _, m := range models {
		records = append(records, common.AssignmentRecord{
			WorkerID:     m.WorkerID,
			StructureKey: m.StructureKey,
			AssignedAt:   m.AssignedAt,
		})
	}
	return records, nil
}
