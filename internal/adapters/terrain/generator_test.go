package terrain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/adapters/terrain"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

func rockTiles(zones []world.Zone) map[grid.Point]bool {
	out := make(map[grid.Point]bool)
	for _, z := range zones {
		for _, p := range z.Area.Tiles() {
			out[p] = true
		}
	}
	return out
}

func TestGenerator_Deterministic(t *testing.T) {
	opts := terrain.Options{Threshold: 0.4, Scale: 0.15}

	a := terrain.NewGenerator(42).RockZones(32, 32, opts, nil)
	b := terrain.NewGenerator(42).RockZones(32, 32, opts, nil)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(42), terrain.NewGenerator(42).Seed())
}

func TestGenerator_ValueIsNormalized(t *testing.T) {
	g := terrain.NewGenerator(7)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := g.Value(x, y, 0.2)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestGenerator_DisabledWithoutThreshold(t *testing.T) {
	g := terrain.NewGenerator(1)

	assert.Nil(t, g.RockZones(16, 16, terrain.Options{Scale: 0.1}, nil))
	assert.Nil(t, g.RockZones(16, 16, terrain.Options{Threshold: 0.5}, nil))
}

func TestGenerator_FullThresholdFillsAllButReserved(t *testing.T) {
	// Arrange
	g := terrain.NewGenerator(3)
	keep := []grid.Rect{{X: 4, Y: 4, Width: 2, Height: 1}}

	// Act
	zones := g.RockZones(10, 10, terrain.Options{Threshold: 1, Scale: 0.1, Margin: 1}, keep)

	// Assert
	rock := rockTiles(zones)
	assert.Len(t, rock, 100-4*3)
	for _, p := range (grid.Rect{X: 3, Y: 3, Width: 4, Height: 3}).Tiles() {
		assert.False(t, rock[p], "tile %s is inside the margin", p)
	}
	for _, z := range zones {
		assert.Equal(t, 1, z.Area.Height)
		assert.GreaterOrEqual(t, z.Area.X, 0)
		assert.LessOrEqual(t, z.Area.X+z.Area.Width, 10)
	}
}

func TestGenerator_RunsDoNotOverlap(t *testing.T) {
	zones := terrain.NewGenerator(99).RockZones(40, 40, terrain.Options{Threshold: 0.5, Scale: 0.2}, nil)

	seen := make(map[grid.Point]bool)
	ids := make(map[string]bool)
	for _, z := range zones {
		require.False(t, ids[z.ID], "duplicate zone id %s", z.ID)
		ids[z.ID] = true
		for _, p := range z.Area.Tiles() {
			require.False(t, seen[p], "tile %s covered twice", p)
			seen[p] = true
		}
	}
}

func TestApply_KeepsScenarioClear(t *testing.T) {
	// Arrange
	s := &simulation.Scenario{
		Structures: []world.StructureSpec{
			{Kind: "stockpile", Key: "a", Position: grid.Point{X: 1, Y: 1}, Width: 2, Height: 2},
			{Kind: "stockpile", Key: "b", Position: grid.Point{X: 10, Y: 1}},
		},
		Harvestables: []world.HarvestableSpec{{Kind: "tree", Position: grid.Point{X: 8, Y: 8}}},
		Workers:      []simulation.WorkerSpawn{{Profession: "woodcutter", Position: grid.Point{X: 5, Y: 0}}},
	}

	// Act
	n := terrain.Apply(s, 12, 12, 5, terrain.Options{Threshold: 1, Scale: 0.1})

	// Assert
	require.Equal(t, n, len(s.Zones))
	rock := rockTiles(s.Zones)
	assert.False(t, rock[grid.Point{X: 1, Y: 1}])
	assert.False(t, rock[grid.Point{X: 2, Y: 2}])
	assert.False(t, rock[grid.Point{X: 8, Y: 8}])
	assert.False(t, rock[grid.Point{X: 5, Y: 0}])
	assert.True(t, rock[grid.Point{X: 0, Y: 11}])
	assert.False(t, rock[grid.Point{X: 10, Y: 1}], "zero-size structures occupy one tile")
	assert.Len(t, terrain.KeepClear(s), 4+n)
	assert.Nil(t, terrain.KeepClear(nil))
}
