package directory_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/assignment"
	"github.com/andrescamacho/colony-go/internal/domain/directory"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/pathfinding"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/targeting"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

type fixture struct {
	dir         *directory.Directory
	sched       *shared.Scheduler
	assignments *assignment.Registry
	rec         *events.Recorder
}

func profile(id string) *profession.Config {
	return &profession.Config{
		ID:            id,
		CarryCapacity: 5,
		HarvestSpeed:  time.Second,
		MoveSpeed:     1,
		DamagePerHit:  1,
		HarvestTargets: []profession.TargetRule{
			{Action: profession.HarvestEntity, TargetKinds: []string{"tree"}, Priority: 1},
		},
	}
}

func newFixture(t *testing.T, opts ...directory.Option) *fixture {
	t.Helper()
	catalog := resource.DefaultCatalog()
	w := world.New(10, 10, catalog, nil)
	professions, err := profession.NewRegistry(catalog, profile("woodcutter"), profile("hauler"))
	require.NoError(t, err)

	sched := shared.NewScheduler(shared.NewMockClock(time.Time{}))
	bus := events.NewBus(nil)
	rec := &events.Recorder{}
	bus.Subscribe(rec.Record)
	assignments := assignment.NewRegistry(nil)
	env := &worker.Env{
		Catalog:   catalog,
		World:     w,
		Selector:  targeting.NewSelector(w, assignments),
		Paths:     pathfinding.NewService(pathfinding.GridProviderFunc(func() *grid.Grid { return grid.New(10, 10) }), 0),
		Scheduler: sched,
		Bus:       bus,
	}

	counter := 0
	opts = append([]directory.Option{directory.WithIDGenerator(func(kind string) string {
		counter++
		return fmt.Sprintf("%s-%d", kind, counter)
	})}, opts...)

	return &fixture{
		dir:         directory.New(professions, env, assignments, opts...),
		sched:       sched,
		assignments: assignments,
		rec:         rec,
	}
}

func TestDirectory_CreateAndLookup(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	a, err := f.dir.Create("woodcutter", grid.Point{X: 1, Y: 1})
	require.NoError(t, err)
	b, err := f.dir.Create("hauler", grid.Point{X: 2, Y: 2})
	require.NoError(t, err)
	c, err := f.dir.Create("woodcutter", grid.Point{X: 3, Y: 3})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 3, f.dir.Len())
	var all []string
	for _, agent := range f.dir.All() {
		all = append(all, agent.ID())
	}
	assert.Equal(t, []string{a, b, c}, all)

	woodcutters := f.dir.ByType("woodcutter")
	require.Len(t, woodcutters, 2)
	assert.Equal(t, a, woodcutters[0].ID())
	assert.Equal(t, c, woodcutters[1].ID())

	agent, ok := f.dir.Get(b)
	require.True(t, ok)
	assert.Equal(t, grid.Point{X: 2, Y: 2}, agent.Position())
	assert.Equal(t, 3, f.sched.Pending(), "each agent owns one tick")

	spawned := 0
	for _, e := range f.rec.Events() {
		if _, ok := e.(events.WorkerSpawned); ok {
			spawned++
		}
	}
	assert.Equal(t, 3, spawned)
}

func TestDirectory_CreateUnknownProfession(t *testing.T) {
	f := newFixture(t)

	_, err := f.dir.Create("wizard", grid.Point{})

	var nf *shared.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "wizard", nf.ID)
	assert.Zero(t, f.dir.Len())
}

func TestDirectory_CreateWithIDRejectsDuplicates(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.dir.CreateWithID("bob", "hauler", grid.Point{}))
	err := f.dir.CreateWithID("bob", "hauler", grid.Point{})

	assert.Error(t, err)
	assert.Error(t, f.dir.CreateWithID("", "hauler", grid.Point{}))
}

func TestDirectory_RemoveReleasesAssignment(t *testing.T) {
	// Arrange
	f := newFixture(t)
	id, err := f.dir.Create("hauler", grid.Point{})
	require.NoError(t, err)
	_, err = f.assignments.Assign(id, "depot")
	require.NoError(t, err)

	// Act
	removed := f.dir.Remove(id)

	// Assert
	assert.True(t, removed)
	assert.False(t, f.dir.Has(id))
	_, bound := f.assignments.StructureFor(id)
	assert.False(t, bound)
	assert.Zero(t, f.sched.Pending())
	assert.False(t, f.dir.Remove(id), "second remove is a no-op")

	last := f.rec.Events()[len(f.rec.Events())-1]
	assert.Equal(t, events.WorkerRemoved{AgentID: id, Reason: "removed"}, last)
}

func TestDirectory_HousekeepingDropsOrphans(t *testing.T) {
	// Arrange
	alive := map[string]bool{}
	f := newFixture(t, directory.WithLivenessProbe(func(id string) bool { return alive[id] }))
	keep, _ := f.dir.Create("woodcutter", grid.Point{})
	drop, _ := f.dir.Create("woodcutter", grid.Point{})
	alive[keep] = true

	// Act
	n := f.dir.Housekeeping()

	// Assert
	assert.Equal(t, 1, n)
	assert.True(t, f.dir.Has(keep))
	assert.False(t, f.dir.Has(drop))
	assert.Zero(t, f.dir.Housekeeping())
}

func TestDirectory_HousekeepingWithoutProbeIsNoop(t *testing.T) {
	f := newFixture(t)
	_, _ = f.dir.Create("woodcutter", grid.Point{})

	assert.Zero(t, f.dir.Housekeeping())
	assert.Equal(t, 1, f.dir.Len())
}

func TestDirectory_ChangeProfession(t *testing.T) {
	// Arrange
	f := newFixture(t)
	id, _ := f.dir.Create("woodcutter", grid.Point{})

	// Act
	err := f.dir.ChangeProfession(id, "hauler")

	// Assert
	require.NoError(t, err)
	assert.Len(t, f.dir.ByType("hauler"), 1)
	assert.Empty(t, f.dir.ByType("woodcutter"))
	assert.Error(t, f.dir.ChangeProfession(id, "wizard"))
	assert.Error(t, f.dir.ChangeProfession("nobody", "hauler"))
}

func TestDirectory_Clear(t *testing.T) {
	f := newFixture(t)
	_, _ = f.dir.Create("woodcutter", grid.Point{})
	_, _ = f.dir.Create("hauler", grid.Point{})

	f.dir.Clear()

	assert.Zero(t, f.dir.Len())
	assert.Zero(t, f.sched.Pending())
}
