package simulation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/test/helpers"
)

func change(key string, newAmount uint32) events.ResourceChanged {
	return events.ResourceChanged{
		Owner: events.Owner{Type: events.OwnerWorker, Key: key},
		Kind:  resource.Wood,
		New:   newAmount,
		Delta: int64(newAmount),
	}
}

func TestJournal_DropsOldestWhenFull(t *testing.T) {
	// Arrange
	repo := helpers.NewMockResourceJournalRepository()
	j := simulation.NewJournal(repo, shared.NewMockClock(time.Time{}), 2)

	// Act
	j.Handle(change("a", 1))
	j.Handle(events.WorkerMoved{AgentID: "a"})
	j.Handle(change("a", 2))
	j.Handle(change("a", 3))
	n, err := j.Flush(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, j.Dropped())
	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, uint32(2), all[0].New)
	assert.Equal(t, uint32(3), all[1].New)
	assert.Zero(t, j.Pending())
}

func TestJournal_FailedFlushKeepsEntries(t *testing.T) {
	// Arrange
	repo := helpers.NewMockResourceJournalRepository()
	repo.AppendErr = errors.New("disk full")
	j := simulation.NewJournal(repo, nil, 0)
	j.Handle(change("a", 1))

	// Act
	_, err := j.Flush(context.Background())
	j.Handle(change("a", 2))

	// Assert
	assert.Error(t, err)
	assert.Equal(t, 2, j.Pending())

	repo.AppendErr = nil
	n, err := j.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint32(1), repo.All()[0].New)
}

func TestJournal_EmptyFlushIsNoop(t *testing.T) {
	j := simulation.NewJournal(helpers.NewMockResourceJournalRepository(), nil, 10)

	n, err := j.Flush(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, n)
}
