package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

func newWorld() *world.World {
	return world.New(10, 10, resource.DefaultCatalog(), nil)
}

func TestArena_StaleHandleMissesAfterReuse(t *testing.T) {
	// Arrange
	var a world.Arena[string]
	first := a.Insert("oak")

	// Act
	require.True(t, a.Remove(first))
	second := a.Insert("pine")

	// Assert
	assert.Equal(t, first.Index, second.Index)
	assert.NotEqual(t, first.Gen, second.Gen)
	_, ok := a.Get(first)
	assert.False(t, ok)
	v, ok := a.Get(second)
	assert.True(t, ok)
	assert.Equal(t, "pine", v)
	assert.False(t, a.Remove(first))
	assert.Equal(t, 1, a.Len())
}

func TestArena_ZeroHandleNeverResolves(t *testing.T) {
	var a world.Arena[int]
	a.Insert(7)

	_, ok := a.Get(world.Handle{})

	assert.False(t, ok)
	assert.True(t, world.Handle{}.IsZero())
}

func TestHarvestable_ClaimIsExclusive(t *testing.T) {
	// Arrange
	w := newWorld()
	h, err := w.SpawnHarvestable(world.HarvestableSpec{Kind: "tree", Position: grid.Point{X: 1, Y: 1}, Health: 20})
	require.NoError(t, err)
	tree, _ := w.Harvestable(h)

	// Act & Assert
	assert.True(t, tree.Claim("a"))
	assert.True(t, tree.Claim("a"), "holder may re-claim")
	assert.False(t, tree.Claim("b"))
	assert.True(t, tree.ClaimedByOther("b"))
	tree.Release("b")
	assert.Equal(t, "a", tree.Harvester(), "release by non-holder is ignored")
	tree.Release("a")
	assert.True(t, tree.Claim("b"))
}

func TestHarvestable_HitSaturatesAtZero(t *testing.T) {
	w := newWorld()
	h, _ := w.SpawnHarvestable(world.HarvestableSpec{Kind: "rock", Health: 15})
	rock, _ := w.Harvestable(h)

	assert.Equal(t, uint32(5), rock.Hit(10))
	assert.Equal(t, uint32(0), rock.Hit(10))
}

func TestHarvestable_RollDrops(t *testing.T) {
	// Arrange
	w := newWorld()
	h, _ := w.SpawnHarvestable(world.HarvestableSpec{
		Kind:   "bush",
		Health: 5,
		Drops: []world.Drop{
			{Kind: resource.Food, Amount: 2, Chance: 1.0},
			{Kind: resource.Wood, Amount: 1, Chance: 0.5},
			{Kind: resource.Stone, Amount: 1, Chance: 0},
		},
	})
	bush, _ := w.Harvestable(h)

	// Act
	lucky := bush.RollDrops(func() float64 { return 0.49 })
	unlucky := bush.RollDrops(func() float64 { return 0.5 })

	// Assert
	assert.Equal(t, []world.Yield{{Kind: resource.Food, Amount: 2}, {Kind: resource.Wood, Amount: 1}}, lucky)
	assert.Equal(t, []world.Yield{{Kind: resource.Food, Amount: 2}}, unlucky)
}

func TestWorld_DestroyAndRespawnNotifyObstacleChanges(t *testing.T) {
	// Arrange
	w := newWorld()
	var reasons []string
	w.OnObstaclesChanged(func(reason string) { reasons = append(reasons, reason) })
	h, err := w.SpawnHarvestable(world.HarvestableSpec{Kind: "tree", Position: grid.Point{X: 3, Y: 3}, Health: 10, Blocking: true})
	require.NoError(t, err)
	tree, _ := w.Harvestable(h)
	tree.Claim("a")

	// Act
	destroyed := w.DestroyHarvestable(h)
	g1 := grid.Build(10, 10, 1, w)
	respawned := w.Respawn(h)
	g2 := grid.Build(10, 10, 2, w)

	// Assert
	assert.True(t, destroyed)
	assert.True(t, respawned)
	assert.Empty(t, tree.Harvester())
	assert.Equal(t, uint32(10), tree.Health())
	assert.True(t, g1.IsWalkable(grid.Point{X: 3, Y: 3}))
	assert.False(t, g2.IsWalkable(grid.Point{X: 3, Y: 3}))
	assert.Equal(t, []string{"harvestable spawned", "harvestable destroyed", "harvestable respawned"}, reasons)
}

func TestWorld_PlaceStructureValidates(t *testing.T) {
	w := newWorld()

	_, err := w.PlaceStructure(world.StructureSpec{Kind: "stockpile", Key: "s1", Position: grid.Point{X: 9, Y: 9}, Width: 2, Height: 2})
	assert.Error(t, err, "footprint leaves the map")

	_, err = w.PlaceStructure(world.StructureSpec{Kind: "stockpile", Key: "s1", Position: grid.Point{X: 0, Y: 0}})
	require.NoError(t, err)

	_, err = w.PlaceStructure(world.StructureSpec{Kind: "stockpile", Key: "s1", Position: grid.Point{X: 4, Y: 4}})
	assert.Error(t, err, "duplicate key")

	_, err = w.PlaceStructure(world.StructureSpec{Kind: "stockpile", Key: "s2", Capacity: map[resource.Kind]uint32{"gold": 5}})
	assert.Error(t, err, "unknown resource")
}

func TestWorld_RemovedStructureIsNotFound(t *testing.T) {
	// Arrange
	w := newWorld()
	h, err := w.PlaceStructure(world.StructureSpec{
		Kind:     "stockpile",
		Key:      "main",
		Position: grid.Point{X: 2, Y: 2},
		Width:    2,
		Height:   2,
		Capacity: map[resource.Kind]uint32{resource.Wood: 10},
		Initial:  map[resource.Kind]uint32{resource.Wood: 4},
	})
	require.NoError(t, err)
	s, _ := w.Structure(h)
	assert.Equal(t, uint32(4), s.Storage().Amount(resource.Wood))
	assert.Equal(t, map[resource.Kind]uint32{resource.Wood: 4}, w.ColonyStock())

	// Act
	removed := w.RemoveStructure(h)

	// Assert
	assert.True(t, removed)
	_, ok := w.Structure(h)
	assert.False(t, ok)
	_, _, ok = w.StructureByKey("main")
	assert.False(t, ok)
	_, ok = w.TargetPosition(world.TargetID{Type: world.TargetStructure, Handle: h})
	assert.False(t, ok)
}

func TestWorld_SpatialQueriesFilterByKind(t *testing.T) {
	// Arrange
	w := newWorld()
	w.SpawnHarvestable(world.HarvestableSpec{Kind: "tree", Position: grid.Point{X: 1, Y: 0}, Health: 1})
	w.SpawnHarvestable(world.HarvestableSpec{Kind: "rock", Position: grid.Point{X: 2, Y: 0}, Health: 1})
	w.SpawnHarvestable(world.HarvestableSpec{Kind: "tree", Position: grid.Point{X: 3, Y: 0}, Health: 1})
	w.PlaceStructure(world.StructureSpec{Kind: "stockpile", Key: "a", Position: grid.Point{X: 5, Y: 5}})
	w.PlaceStructure(world.StructureSpec{Kind: "sawmill", Key: "b", Position: grid.Point{X: 7, Y: 7}})

	// Act
	trees := w.EntitiesOfType("tree")
	stockpiles := w.StructuresOfType("stockpile")

	// Assert
	require.Len(t, trees, 2)
	assert.Equal(t, 1, trees[0].Position().X)
	assert.Equal(t, 3, trees[1].Position().X)
	require.Len(t, stockpiles, 1)
	assert.Equal(t, "a", stockpiles[0].Key())
}

func TestWorld_ZonesBlockUntilCleared(t *testing.T) {
	// Arrange
	w := newWorld()
	require.NoError(t, w.AddZone(world.Zone{ID: "rocks", Area: grid.Rect{X: 0, Y: 0, Width: 3, Height: 1}}))
	assert.Error(t, w.AddZone(world.Zone{ID: "rocks"}))

	// Act
	before := grid.Build(10, 10, 1, w)
	cleared := w.ClearZone("rocks")
	after := grid.Build(10, 10, 2, w)

	// Assert
	assert.True(t, cleared)
	assert.Equal(t, 3, before.BlockedCount())
	assert.Zero(t, after.BlockedCount())
	assert.False(t, w.ClearZone("rocks"))
}

func TestWorld_StorageListenerFollowsStructureLifetime(t *testing.T) {
	// Arrange
	w := newWorld()
	var seen []string
	w.OnStorageChanged(func(key string, c ledger.Change) {
		seen = append(seen, key)
	})
	h, err := w.PlaceStructure(world.StructureSpec{
		Kind:     "stockpile",
		Key:      "depot",
		Position: grid.Point{X: 1, Y: 1},
		Capacity: map[resource.Kind]uint32{resource.Wood: 10},
		Initial:  map[resource.Kind]uint32{resource.Wood: 2},
	})
	require.NoError(t, err)
	st, _ := w.Structure(h)

	// Act
	st.Storage().Add(resource.Wood, 3)
	w.RemoveStructure(h)
	st.Storage().Add(resource.Wood, 1)

	// Assert
	assert.Equal(t, []string{"depot"}, seen, "initial fill and post-removal changes are not reported")
}
