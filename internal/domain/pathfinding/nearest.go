package pathfinding

import "github.com/andrescamacho/colony-go/internal/domain/grid"

// FindNearestWalkableTile searches rings of growing Chebyshev radius around
// target, up to maxRadius, and returns the first walkable tile it meets. Within
// a ring, tiles are visited row by row, left to right; the first hit wins even
// if another tile on the same ring is closer in straight-line distance.
// Radius 0 is target itself.
func FindNearestWalkableTile(g *grid.Grid, target grid.Point, maxRadius int) (grid.Point, bool) {
	if maxRadius < 0 {
		return grid.Point{}, false
	}
	if g.IsWalkable(target) {
		return target, true
	}

	for r := 1; r <= maxRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			edgeRow := dy == -r || dy == r
			for dx := -r; dx <= r; dx++ {
				if !edgeRow && dx != -r && dx != r {
					continue
				}
				p := grid.Point{X: target.X + dx, Y: target.Y + dy}
				if g.IsWalkable(p) {
					return p, true
				}
			}
		}
	}
	return grid.Point{}, false
}
