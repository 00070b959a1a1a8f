package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/test/helpers"
)

func TestAssignmentRepository_UpsertReleaseRevive(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormAssignmentRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Act & Assert
	require.NoError(t, repo.Upsert(ctx, common.AssignmentRecord{WorkerID: "b", StructureKey: "mill", AssignedAt: at}))
	require.NoError(t, repo.Upsert(ctx, common.AssignmentRecord{WorkerID: "a", StructureKey: "depot", AssignedAt: at}))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].WorkerID)

	require.NoError(t, repo.Release(ctx, "a", "removed"))
	assert.Error(t, repo.Release(ctx, "a", "removed"), "already released")

	var model persistence.WorkerAssignmentModel
	require.NoError(t, db.First(&model, "worker_id = ?", "a").Error)
	assert.Equal(t, "released", model.Status)
	require.NotNil(t, model.ReleaseReason)
	assert.Equal(t, "removed", *model.ReleaseReason)

	require.NoError(t, repo.Upsert(ctx, common.AssignmentRecord{WorkerID: "a", StructureKey: "mill2", AssignedAt: at}))
	active, err = repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "mill2", active[0].StructureKey)
}
