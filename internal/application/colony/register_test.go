package colony_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/application/colony"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/world"
	"github.com/andrescamacho/colony-go/test/helpers"
)

type colonyFixture struct {
	engine      *helpers.TestEngine
	mediator    mediator.Mediator
	ledgers     *helpers.MockLedgerSnapshotRepository
	assignments *helpers.MockAssignmentRepository
	journalRepo *helpers.MockResourceJournalRepository
	journal     *simulation.Journal
}

func newColonyFixture(t *testing.T) *colonyFixture {
	t.Helper()
	engine := helpers.NewTestEngine(t, 12, 12)
	_, err := engine.Load(&simulation.Scenario{
		Name: "glade",
		Structures: []world.StructureSpec{{
			Kind:     "stockpile",
			Key:      "depot",
			Position: grid.Point{X: 0, Y: 6},
			Width:    1,
			Height:   1,
			Capacity: map[resource.Kind]uint32{resource.Wood: 50, resource.Stone: 50},
		}},
		Harvestables: []world.HarvestableSpec{{
			Kind:     "tree",
			Position: grid.Point{X: 3, Y: 0},
			Health:   20,
			Drops:    []world.Drop{{Kind: resource.Wood, Amount: 4, Chance: 1}},
		}},
		Zones: []world.Zone{{ID: "rocks", Area: grid.Rect{X: 8, Y: 8, Width: 2, Height: 2}}},
	})
	require.NoError(t, err)

	f := &colonyFixture{
		engine:      engine,
		mediator:    mediator.NewMediator(),
		ledgers:     helpers.NewMockLedgerSnapshotRepository(),
		assignments: helpers.NewMockAssignmentRepository(),
		journalRepo: helpers.NewMockResourceJournalRepository(),
	}
	f.journal = simulation.NewJournal(f.journalRepo, engine.Clock, 100)
	engine.Bus().Subscribe(f.journal.Handle)

	require.NoError(t, colony.RegisterHandlers(f.mediator, engine.Engine, colony.Repositories{
		Ledgers:     f.ledgers,
		Assignments: f.assignments,
		Journal:     f.journalRepo,
	}, f.journal))
	return f
}

func (f *colonyFixture) spawn(t *testing.T, profession string, x, y int) string {
	t.Helper()
	resp, err := f.mediator.Send(context.Background(), &commands.SpawnWorkerCommand{Profession: profession, X: x, Y: y})
	require.NoError(t, err)
	return resp.(*commands.SpawnWorkerResponse).WorkerID
}

func TestRegisterHandlers_RejectsDoubleRegistration(t *testing.T) {
	f := newColonyFixture(t)

	err := colony.RegisterHandlers(f.mediator, f.engine.Engine, colony.Repositories{}, nil)

	assert.Error(t, err)
}

func TestSpawnWorker_ListAndAssign(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()

	// Act
	id := f.spawn(t, "woodcutter", 1, 1)
	_, err := f.mediator.Send(ctx, &commands.AssignWorkerCommand{WorkerID: id, StructureKey: "depot"})
	require.NoError(t, err)
	resp, err := f.mediator.Send(ctx, &queries.ListWorkersQuery{Profession: "woodcutter"})
	require.NoError(t, err)

	// Assert
	workers := resp.(*queries.ListWorkersResponse).Workers
	require.Len(t, workers, 1)
	assert.Equal(t, id, workers[0].ID)
	assert.Equal(t, "depot", workers[0].AssignedTo)
	assert.Equal(t, 1, workers[0].X)

	active, err := f.assignments.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "depot", active[0].StructureKey)

	haulers, err := f.mediator.Send(ctx, &queries.ListWorkersQuery{Profession: "hauler"})
	require.NoError(t, err)
	assert.Empty(t, haulers.(*queries.ListWorkersResponse).Workers)
}

func TestSpawnWorker_FailedAssignmentLeavesNoWorker(t *testing.T) {
	f := newColonyFixture(t)

	_, err := f.mediator.Send(context.Background(), &commands.SpawnWorkerCommand{
		Profession: "woodcutter", X: 1, Y: 1, AssignTo: "nowhere",
	})

	var nf *shared.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Zero(t, f.engine.Directory().Len())
}

func TestSpawnWorker_Validation(t *testing.T) {
	f := newColonyFixture(t)
	ctx := context.Background()

	_, err := f.mediator.Send(ctx, &commands.SpawnWorkerCommand{})
	assert.Error(t, err)

	_, err = f.mediator.Send(ctx, &commands.SpawnWorkerCommand{Profession: "woodcutter", X: 40, Y: 40})
	assert.Error(t, err)

	_, err = f.mediator.Send(ctx, &commands.SpawnWorkerCommand{Profession: "wizard"})
	assert.Error(t, err)
}

func TestUnassignWorker_ReleasesRegistryAndRepository(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()
	id := f.spawn(t, "hauler", 1, 1)
	_, err := f.mediator.Send(ctx, &commands.AssignWorkerCommand{WorkerID: id, StructureKey: "depot"})
	require.NoError(t, err)

	// Act
	_, err = f.mediator.Send(ctx, &commands.UnassignWorkerCommand{WorkerID: id})

	// Assert
	require.NoError(t, err)
	_, bound := f.engine.Assignments().StructureFor(id)
	assert.False(t, bound)
	assert.Equal(t, "unassigned", f.assignments.Released[id])

	_, err = f.mediator.Send(ctx, &commands.UnassignWorkerCommand{WorkerID: id})
	assert.Error(t, err, "releasing twice fails")
}

func TestRemoveWorkerAndForceIdle(t *testing.T) {
	f := newColonyFixture(t)
	ctx := context.Background()
	id := f.spawn(t, "woodcutter", 1, 1)

	_, err := f.mediator.Send(ctx, &commands.ForceIdleCommand{WorkerID: id})
	require.NoError(t, err)
	_, err = f.mediator.Send(ctx, &commands.RemoveWorkerCommand{WorkerID: id})
	require.NoError(t, err)

	_, err = f.mediator.Send(ctx, &commands.ForceIdleCommand{WorkerID: id})
	assert.Error(t, err)
	_, err = f.mediator.Send(ctx, &queries.GetWorkerQuery{WorkerID: id})
	assert.Error(t, err)
}

func TestChangeProfession(t *testing.T) {
	f := newColonyFixture(t)
	ctx := context.Background()
	id := f.spawn(t, "woodcutter", 1, 1)

	_, err := f.mediator.Send(ctx, &commands.ChangeProfessionCommand{WorkerID: id, Profession: "hauler"})
	require.NoError(t, err)

	resp, err := f.mediator.Send(ctx, &queries.GetWorkerQuery{WorkerID: id})
	require.NoError(t, err)
	assert.Equal(t, "hauler", resp.(*queries.GetWorkerResponse).Worker.Profession)
}

func TestPlaceAndRemoveStructure(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()

	// Act
	placed, err := f.mediator.Send(ctx, &commands.PlaceStructureCommand{
		Kind: "sawmill", Key: "mill", X: 5, Y: 5, Width: 2, Height: 1,
		Capacity: map[string]uint32{"wood": 30},
		Initial:  map[string]uint32{"wood": 7},
	})
	require.NoError(t, err)

	// Assert
	dto := placed.(*commands.PlaceStructureResponse).Structure
	assert.Equal(t, "mill", dto.Key)
	assert.Equal(t, uint32(7), dto.Stored["wood"])

	res, err := f.mediator.Send(ctx, &queries.StructureResourcesQuery{Key: "mill"})
	require.NoError(t, err)
	assert.Equal(t, uint32(30), res.(*queries.StructureResourcesResponse).Structure.Capacity["wood"])

	list, err := f.mediator.Send(ctx, &queries.ListStructuresQuery{Kind: "sawmill"})
	require.NoError(t, err)
	assert.Len(t, list.(*queries.ListStructuresResponse).Structures, 1)

	_, err = f.mediator.Send(ctx, &commands.RemoveStructureCommand{Key: "mill"})
	require.NoError(t, err)
	_, err = f.mediator.Send(ctx, &queries.StructureResourcesQuery{Key: "mill"})
	assert.Error(t, err)
}

func TestClearZone_RebuildsGrid(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()
	before := f.engine.CurrentGrid().Version()
	require.False(t, f.engine.CurrentGrid().IsWalkable(grid.Point{X: 8, Y: 8}))

	// Act
	resp, err := f.mediator.Send(ctx, &commands.ClearZoneCommand{ZoneID: "rocks"})

	// Assert
	require.NoError(t, err)
	assert.Greater(t, resp.(*commands.ClearZoneResponse).GridVersion, before)
	assert.True(t, f.engine.CurrentGrid().IsWalkable(grid.Point{X: 8, Y: 8}))

	_, err = f.mediator.Send(ctx, &commands.ClearZoneCommand{ZoneID: "rocks"})
	assert.Error(t, err)
}

func TestHarvestThenRespawn(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()
	f.spawn(t, "woodcutter", 0, 0)
	f.engine.StepEngine(8 * time.Second)
	require.True(t, f.engine.World().EntitiesOfType("tree")[0].IsDestroyed())

	// Act
	resp, err := f.mediator.Send(ctx, &commands.RespawnHarvestablesCommand{Kind: "tree"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resp.(*commands.RespawnHarvestablesResponse).Respawned)
	tree := f.engine.World().EntitiesOfType("tree")[0]
	assert.False(t, tree.IsDestroyed())
	assert.Equal(t, tree.MaxHealth(), tree.Health())
}

func TestSaveAndRestoreState(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()
	_, depot, ok := f.engine.World().StructureByKey("depot")
	require.True(t, ok)
	depot.Storage().Add(resource.Wood, 12)

	// Act
	saved, err := f.mediator.Send(ctx, &commands.SaveStateCommand{})
	require.NoError(t, err)
	depot.Storage().Remove(resource.Wood, 12)
	restored, err := f.mediator.Send(ctx, &commands.RestoreStateCommand{})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, saved.(*commands.SaveStateResponse).Ledgers)
	assert.Equal(t, 1, saved.(*commands.SaveStateResponse).JournalEntries)
	assert.Equal(t, 1, restored.(*commands.RestoreStateResponse).Restored)
	assert.Equal(t, uint32(12), depot.Storage().Amount(resource.Wood))
}

func TestResourceHistory_ReadsFlushedJournal(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	ctx := context.Background()
	_, depot, _ := f.engine.World().StructureByKey("depot")
	depot.Storage().Add(resource.Wood, 3)
	depot.Storage().Add(resource.Wood, 2)
	_, err := f.journal.Flush(ctx)
	require.NoError(t, err)

	// Act
	resp, err := f.mediator.Send(ctx, &queries.ResourceHistoryQuery{OwnerType: "structure", OwnerKey: "depot"})

	// Assert
	require.NoError(t, err)
	entries := resp.(*queries.ResourceHistoryResponse).Entries
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(5), entries[0].New)
	assert.Equal(t, events.Owner{Type: events.OwnerStructure, Key: "depot"}, entries[0].Owner)

	_, err = f.mediator.Send(ctx, &queries.ResourceHistoryQuery{OwnerType: "ghost"})
	assert.Error(t, err)
}

func TestStatusQuery(t *testing.T) {
	f := newColonyFixture(t)
	f.spawn(t, "woodcutter", 1, 1)

	resp, err := f.mediator.Send(context.Background(), &queries.StatusQuery{})

	require.NoError(t, err)
	status := resp.(*queries.StatusResponse).Status
	assert.Equal(t, 1, status.Workers)
	assert.Equal(t, 1, status.Structures)
	assert.Equal(t, "PENDING", status.Lifecycle)
}

func TestHandlers_RejectWrongRequestType(t *testing.T) {
	f := newColonyFixture(t)
	h := commands.NewSpawnWorkerHandler(f.engine.Engine)

	_, err := h.Handle(context.Background(), &queries.StatusQuery{})

	assert.ErrorContains(t, err, "invalid request type")
}

func TestRestoreAssignments_RebindsLiveAndReleasesStale(t *testing.T) {
	// Arrange
	f := newColonyFixture(t)
	live := f.spawn(t, "hauler", 1, 1)
	already := f.spawn(t, "hauler", 2, 1)
	_, err := f.mediator.Send(context.Background(), &commands.PlaceStructureCommand{Kind: "stockpile", Key: "east", X: 5, Y: 5})
	require.NoError(t, err)
	require.NoError(t, f.engine.Assign(already, "east"))

	ctx := context.Background()
	now := f.engine.Clock.Now()
	require.NoError(t, f.assignments.Upsert(ctx, common.AssignmentRecord{WorkerID: live, StructureKey: "depot", AssignedAt: now}))
	require.NoError(t, f.assignments.Upsert(ctx, common.AssignmentRecord{WorkerID: already, StructureKey: "east", AssignedAt: now}))
	require.NoError(t, f.assignments.Upsert(ctx, common.AssignmentRecord{WorkerID: "ghost", StructureKey: "depot", AssignedAt: now}))

	// Act
	resp, err := f.mediator.Send(ctx, &commands.RestoreAssignmentsCommand{})

	// Assert
	require.NoError(t, err)
	out := resp.(*commands.RestoreAssignmentsResponse)
	assert.Equal(t, 2, out.Restored)
	assert.Equal(t, 1, out.Released)
	key, ok := f.engine.Assignments().StructureFor(live)
	require.True(t, ok)
	assert.Equal(t, "depot", key)
	assert.Equal(t, "stale", f.assignments.Released["ghost"])
}
