package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/test/helpers"
)

func TestLedgerSnapshotRepository_SaveReplacesRows(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormLedgerSnapshotRepository(db)
	ctx := context.Background()
	owner := events.Owner{Type: events.OwnerStructure, Key: "depot"}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Act
	require.NoError(t, repo.Save(ctx, common.LedgerSnapshot{
		Owner:   owner,
		Amounts: map[resource.Kind]uint32{resource.Wood: 5, resource.Stone: 2},
		SavedAt: at,
	}))
	require.NoError(t, repo.Save(ctx, common.LedgerSnapshot{
		Owner:   owner,
		Amounts: map[resource.Kind]uint32{resource.Wood: 9},
		SavedAt: at.Add(time.Minute),
	}))
	snap, found, err := repo.Load(ctx, owner)

	// Assert
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[resource.Kind]uint32{resource.Wood: 9}, snap.Amounts)
	assert.True(t, snap.SavedAt.Equal(at.Add(time.Minute)))
}

func TestLedgerSnapshotRepository_EmptyLedgerIsListed(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormLedgerSnapshotRepository(db)
	ctx := context.Background()
	worker := events.Owner{Type: events.OwnerWorker, Key: "w1"}
	depot := events.Owner{Type: events.OwnerStructure, Key: "depot"}

	// Act
	require.NoError(t, repo.Save(ctx, common.LedgerSnapshot{Owner: worker}))
	require.NoError(t, repo.Save(ctx, common.LedgerSnapshot{Owner: depot, Amounts: map[resource.Kind]uint32{resource.Food: 1}}))
	owners, err := repo.ListOwners(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []events.Owner{depot, worker}, owners)

	snap, found, err := repo.Load(ctx, worker)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, snap.Amounts)
}

func TestLedgerSnapshotRepository_LoadMissing(t *testing.T) {
	repo := persistence.NewGormLedgerSnapshotRepository(helpers.NewTestDB(t))

	_, found, err := repo.Load(context.Background(), events.Owner{Type: events.OwnerWorker, Key: "ghost"})

	require.NoError(t, err)
	assert.False(t, found)
}
