package terrain

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// Options controls rock generation
type Options struct {
	// Fraction of the noise range that becomes rock; 0 disables generation
	Threshold float64
	// Noise frequency per tile; smaller values give larger formations
	Scale float64
	// Tiles kept clear around anything the scenario places
	Margin int
}

// Generator turns seeded Perlin noise into obstruction zones
type Generator struct {
	noise *perlin.Perlin
	seed  int64
}

// NewGenerator creates a generator with the given seed
func NewGenerator(seed int64) *Generator {
	// alpha=2, beta=2, n=3 gives smooth, blobby formations
	return &Generator{
		noise: perlin.NewPerlin(2, 2, 3, seed),
		seed:  seed,
	}
}

// Seed returns the generator seed
func (g *Generator) Seed() int64 {
	return g.seed
}

// Value returns the noise at a tile normalized to [0, 1]. Samples are taken
// at tile centres; Perlin noise is zero on every integer lattice point.
func (g *Generator) Value(x, y int, scale float64) float64 {
	n := g.noise.Noise2D((float64(x)+0.5)*scale, (float64(y)+0.5)*scale)
	v := (n + 1) / 2
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// RockZones returns one zone per horizontal run of rock tiles, scanning rows
// top to bottom. Tiles inside any keepClear rect grown by opts.Margin are
// never rock.
func (g *Generator) RockZones(width, height int, opts Options, keepClear []grid.Rect) []world.Zone {
	if opts.Threshold <= 0 || opts.Scale <= 0 {
		return nil
	}
	reserved := make([]grid.Rect, len(keepClear))
	for i, r := range keepClear {
		reserved[i] = grid.Rect{
			X:      r.X - opts.Margin,
			Y:      r.Y - opts.Margin,
			Width:  r.Width + 2*opts.Margin,
			Height: r.Height + 2*opts.Margin,
		}
	}
	isRock := func(x, y int) bool {
		p := grid.Point{X: x, Y: y}
		for _, r := range reserved {
			if r.Contains(p) {
				return false
			}
		}
		return g.Value(x, y, opts.Scale) >= 1-opts.Threshold
	}

	var zones []world.Zone
	for y := 0; y < height; y++ {
		for x := 0; x < width; {
			if !isRock(x, y) {
				x++
				continue
			}
			start := x
			for x < width && isRock(x, y) {
				x++
			}
			zones = append(zones, world.Zone{
				ID:   fmt.Sprintf("rock-%d-%d", start, y),
				Area: grid.Rect{X: start, Y: y, Width: x - start, Height: 1},
			})
		}
	}
	return zones
}

// KeepClear lists the footprints a scenario occupies
func KeepClear(s *simulation.Scenario) []grid.Rect {
	if s == nil {
		return nil
	}
	var out []grid.Rect
	for _, st := range s.Structures {
		out = append(out, grid.RectAt(st.Position, max(st.Width, 1), max(st.Height, 1)))
	}
	for _, h := range s.Harvestables {
		out = append(out, grid.RectAt(h.Position, 1, 1))
	}
	for _, w := range s.Workers {
		out = append(out, grid.RectAt(w.Position, 1, 1))
	}
	for _, z := range s.Zones {
		out = append(out, z.Area)
	}
	return out
}

// Apply appends generated rock zones to the scenario
func Apply(s *simulation.Scenario, width, height int, seed int64, opts Options) int {
	zones := NewGenerator(seed).RockZones(width, height, opts, KeepClear(s))
	s.Zones = append(s.Zones, zones...)
	return len(zones)
}
