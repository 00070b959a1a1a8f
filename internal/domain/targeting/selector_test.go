package targeting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/assignment"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/targeting"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeSeeker struct {
	id        string
	pos       grid.Point
	cfg       *profession.Config
	blacklist *targeting.Blacklist
	carried   *ledger.Ledger
}

func (f *fakeSeeker) ID() string                      { return f.id }
func (f *fakeSeeker) Position() grid.Point            { return f.pos }
func (f *fakeSeeker) Config() *profession.Config      { return f.cfg }
func (f *fakeSeeker) Blacklist() *targeting.Blacklist { return f.blacklist }
func (f *fakeSeeker) CarriedKinds() []resource.Kind   { return f.carried.Kinds() }

func newSeeker(cfg *profession.Config, pos grid.Point) *fakeSeeker {
	return &fakeSeeker{
		id:        "w1",
		pos:       pos,
		cfg:       cfg,
		blacklist: targeting.NewBlacklist(epoch, targeting.DefaultClearInterval),
		carried:   ledger.NewCarried(resource.DefaultCatalog(), cfg.CarryCapacity),
	}
}

func gatherer() *profession.Config {
	return &profession.Config{
		ID:            "gatherer",
		CarryCapacity: 10,
		HarvestSpeed:  time.Second,
		MoveSpeed:     1,
		DamagePerHit:  10,
		HarvestTargets: []profession.TargetRule{
			{Action: profession.HarvestEntity, TargetKinds: []string{"bush"}, Priority: 1},
			{Action: profession.HarvestEntity, TargetKinds: []string{"tree"}, Priority: 2},
		},
		DepositTargets: []profession.TargetRule{
			{Action: profession.DepositToStructure, TargetKinds: []string{"stockpile"}, Priority: 1},
		},
	}
}

func spawn(t *testing.T, w *world.World, kind string, x, y int) world.Handle {
	t.Helper()
	h, err := w.SpawnHarvestable(world.HarvestableSpec{
		Kind:     world.EntityKind(kind),
		Position: grid.Point{X: x, Y: y},
		Health:   20,
		Drops:    []world.Drop{{Kind: resource.Wood, Amount: 4, Chance: 1}},
	})
	require.NoError(t, err)
	return h
}

func place(t *testing.T, w *world.World, key string, x, y int, capacity map[resource.Kind]uint32) world.Handle {
	t.Helper()
	h, err := w.PlaceStructure(world.StructureSpec{Kind: "stockpile", Key: key, Position: grid.Point{X: x, Y: y}, Capacity: capacity})
	require.NoError(t, err)
	return h
}

func TestSelectHarvestTarget_PriorityBeatsDistance(t *testing.T) {
	// Arrange
	w := world.New(50, 50, resource.DefaultCatalog(), nil)
	spawn(t, w, "tree", 1, 0)
	bush := spawn(t, w, "bush", 40, 40)
	sel := targeting.NewSelector(w, nil)

	// Act
	target, ok := sel.SelectHarvestTarget(newSeeker(gatherer(), grid.Point{}))

	// Assert
	require.True(t, ok)
	assert.Equal(t, bush, target.ID.Handle)
	assert.Equal(t, uint32(1), target.Rule.Priority)
}

func TestSelectHarvestTarget_NearestWithHandleTieBreak(t *testing.T) {
	// Arrange
	w := world.New(20, 20, resource.DefaultCatalog(), nil)
	spawn(t, w, "tree", 10, 10)
	first := spawn(t, w, "tree", 3, 0)
	spawn(t, w, "tree", 0, 3)
	cfg := gatherer()
	cfg.HarvestTargets = cfg.HarvestTargets[1:]
	sel := targeting.NewSelector(w, nil)

	// Act
	target, ok := sel.SelectHarvestTarget(newSeeker(cfg, grid.Point{}))

	// Assert
	require.True(t, ok)
	assert.Equal(t, first, target.ID.Handle)
	assert.InDelta(t, 3.0, target.Distance, 1e-9)
}

func TestSelectHarvestTarget_SkipsDestroyedClaimedAndBlacklisted(t *testing.T) {
	// Arrange
	w := world.New(20, 20, resource.DefaultCatalog(), nil)
	destroyed := spawn(t, w, "tree", 1, 0)
	claimed := spawn(t, w, "tree", 2, 0)
	blacklisted := spawn(t, w, "tree", 3, 0)
	free := spawn(t, w, "tree", 9, 0)
	w.DestroyHarvestable(destroyed)
	c, _ := w.Harvestable(claimed)
	c.Claim("someone-else")

	cfg := gatherer()
	cfg.HarvestTargets = cfg.HarvestTargets[1:]
	seeker := newSeeker(cfg, grid.Point{})
	seeker.blacklist.Add(world.TargetID{Type: world.TargetHarvestable, Handle: blacklisted})
	sel := targeting.NewSelector(w, nil)

	// Act
	target, ok := sel.SelectHarvestTarget(seeker)

	// Assert
	require.True(t, ok)
	assert.Equal(t, free, target.ID.Handle)
}

func TestSelectHarvestTarget_BlacklistedUntilClear(t *testing.T) {
	// Arrange
	w := world.New(20, 20, resource.DefaultCatalog(), nil)
	only := spawn(t, w, "tree", 2, 2)
	cfg := gatherer()
	seeker := newSeeker(cfg, grid.Point{})
	id := world.TargetID{Type: world.TargetHarvestable, Handle: only}
	seeker.blacklist.Add(id)
	sel := targeting.NewSelector(w, nil)

	// Act & Assert
	for _, offset := range []time.Duration{0, 10 * time.Second, 29 * time.Second} {
		assert.False(t, seeker.blacklist.ClearIfDue(epoch.Add(offset)))
		_, ok := sel.SelectHarvestTarget(seeker)
		assert.False(t, ok, "still blacklisted at +%s", offset)
	}

	assert.True(t, seeker.blacklist.ClearIfDue(epoch.Add(30*time.Second)))
	target, ok := sel.SelectHarvestTarget(seeker)
	require.True(t, ok)
	assert.Equal(t, id, target.ID)
}

func TestSelectHarvestTarget_WorkRadius(t *testing.T) {
	w := world.New(20, 20, resource.DefaultCatalog(), nil)
	spawn(t, w, "tree", 6, 8)
	cfg := gatherer()
	cfg.WorkRadius = 9.9
	sel := targeting.NewSelector(w, nil)

	_, ok := sel.SelectHarvestTarget(newSeeker(cfg, grid.Point{}))
	assert.False(t, ok)

	cfg.WorkRadius = 10
	_, ok = sel.SelectHarvestTarget(newSeeker(cfg, grid.Point{}))
	assert.True(t, ok)
}

func TestSelectHarvestTarget_StructureRuleNeedsStock(t *testing.T) {
	// Arrange
	w := world.New(20, 20, resource.DefaultCatalog(), nil)
	emptyStore := place(t, w, "near", 1, 1, map[resource.Kind]uint32{resource.Wood: 10})
	stocked := place(t, w, "far", 9, 9, map[resource.Kind]uint32{resource.Wood: 10, resource.Stone: 10})
	_ = emptyStore
	st, _ := w.Structure(stocked)
	st.Storage().Add(resource.Stone, 3)

	cfg := gatherer()
	cfg.HarvestTargets = []profession.TargetRule{{
		Action:            profession.HarvestStructure,
		TargetKinds:       []string{"stockpile"},
		EligibleResources: resource.NewKindSet(resource.Stone),
		Priority:          1,
	}}
	sel := targeting.NewSelector(w, nil)

	// Act
	target, ok := sel.SelectHarvestTarget(newSeeker(cfg, grid.Point{}))

	// Assert
	require.True(t, ok)
	assert.Equal(t, stocked, target.ID.Handle)
	assert.Equal(t, profession.HarvestStructure, target.Action)
}

func TestSelectDepositTarget_NothingCarried(t *testing.T) {
	w := world.New(20, 20, resource.DefaultCatalog(), nil)
	place(t, w, "a", 1, 1, map[resource.Kind]uint32{resource.Wood: 10})
	sel := targeting.NewSelector(w, nil)

	_, ok := sel.SelectDepositTarget(newSeeker(gatherer(), grid.Point{}))

	assert.False(t, ok)
}

func TestSelectDepositTarget_PrefersAssignedStructure(t *testing.T) {
	// Arrange
	w := world.New(30, 30, resource.DefaultCatalog(), nil)
	place(t, w, "near", 1, 1, map[resource.Kind]uint32{resource.Wood: 10})
	assigned := place(t, w, "far", 20, 20, map[resource.Kind]uint32{resource.Wood: 10})
	reg := assignment.NewRegistry(nil)
	_, err := reg.Assign("w1", "far")
	require.NoError(t, err)
	seeker := newSeeker(gatherer(), grid.Point{})
	seeker.carried.Add(resource.Wood, 5)
	sel := targeting.NewSelector(w, reg)

	// Act
	target, ok := sel.SelectDepositTarget(seeker)

	// Assert
	require.True(t, ok)
	assert.Equal(t, assigned, target.ID.Handle)
}

func TestSelectDepositTarget_FullAssignedFallsBackToNearest(t *testing.T) {
	// Arrange
	w := world.New(30, 30, resource.DefaultCatalog(), nil)
	full := place(t, w, "A", 2, 2, map[resource.Kind]uint32{resource.Wood: 5})
	place(t, w, "C", 25, 25, map[resource.Kind]uint32{resource.Wood: 50})
	b := place(t, w, "B", 6, 6, map[resource.Kind]uint32{resource.Wood: 50})
	a, _ := w.Structure(full)
	a.Storage().Add(resource.Wood, 5)

	reg := assignment.NewRegistry(nil)
	_, err := reg.Assign("w1", "A")
	require.NoError(t, err)
	seeker := newSeeker(gatherer(), grid.Point{})
	seeker.carried.Add(resource.Wood, 4)
	sel := targeting.NewSelector(w, reg)

	// Act
	target, ok := sel.SelectDepositTarget(seeker)

	// Assert
	require.True(t, ok)
	assert.Equal(t, b, target.ID.Handle)
}

func TestSelectDepositTarget_BlacklistedAssignedFallsBackToRuleSearch(t *testing.T) {
	// Arrange
	w := world.New(30, 30, resource.DefaultCatalog(), nil)
	assigned := place(t, w, "A", 2, 2, map[resource.Kind]uint32{resource.Wood: 50})
	b := place(t, w, "B", 8, 8, map[resource.Kind]uint32{resource.Wood: 50})

	reg := assignment.NewRegistry(nil)
	_, err := reg.Assign("w1", "A")
	require.NoError(t, err)
	seeker := newSeeker(gatherer(), grid.Point{})
	seeker.carried.Add(resource.Wood, 5)
	seeker.blacklist.Add(world.TargetID{Type: world.TargetStructure, Handle: assigned})
	sel := targeting.NewSelector(w, reg)

	// Act
	target, ok := sel.SelectDepositTarget(seeker)

	// Assert
	require.True(t, ok)
	assert.Equal(t, b, target.ID.Handle)
	assert.NotContains(t, target.Reason, "assigned")

	// Once the blacklist clears, the assignment wins again
	seeker.blacklist.Clear(epoch.Add(targeting.DefaultClearInterval))
	target, ok = sel.SelectDepositTarget(seeker)
	require.True(t, ok)
	assert.Equal(t, assigned, target.ID.Handle)
}

func TestSelectDepositTarget_SkipsStructuresThatCannotAcceptCarriedKinds(t *testing.T) {
	w := world.New(30, 30, resource.DefaultCatalog(), nil)
	place(t, w, "stone-only", 1, 1, map[resource.Kind]uint32{resource.Stone: 10})
	woodStore := place(t, w, "wood", 10, 10, map[resource.Kind]uint32{resource.Wood: 10})
	seeker := newSeeker(gatherer(), grid.Point{})
	seeker.carried.Add(resource.Wood, 1)
	sel := targeting.NewSelector(w, nil)

	target, ok := sel.SelectDepositTarget(seeker)

	require.True(t, ok)
	assert.Equal(t, woodStore, target.ID.Handle)
}

func TestSelector_NilConfigPanics(t *testing.T) {
	w := world.New(5, 5, resource.DefaultCatalog(), nil)
	sel := targeting.NewSelector(w, nil)
	seeker := &fakeSeeker{id: "x"}

	assert.Panics(t, func() { sel.SelectHarvestTarget(seeker) })
}
