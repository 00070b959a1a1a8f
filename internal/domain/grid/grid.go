package grid

import (
	"fmt"
	"math"
)

// Point is a tile coordinate
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p offset by d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// DistanceTo returns the Euclidean distance between two tiles
func (p Point) DistanceTo(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared avoids the sqrt for comparisons
func (p Point) DistanceSquared(other Point) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Less orders points row-major
func (p Point) Less(other Point) bool {
	if p.Y != other.Y {
		return p.Y < other.Y
	}
	return p.X < other.X
}

// Rect is an axis-aligned tile footprint
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RectAt builds a footprint of size w×h anchored at p
func RectAt(p Point, w, h int) Rect {
	return Rect{X: p.X, Y: p.Y, Width: w, Height: h}
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Tiles returns every tile in r, row-major
func (r Rect) Tiles() []Point {
	if r.Width <= 0 || r.Height <= 0 {
		return nil
	}
	out := make([]Point, 0, r.Width*r.Height)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}

// Cell is the walkability of one tile
type Cell uint8

const (
	Walkable Cell = iota
	Blocked
)

// Grid is an immutable walkability snapshot. A Grid is never patched: when
// obstacles change, a new one is built and swapped in by its owner.
type Grid struct {
	width   int
	height  int
	cells   []Cell
	version uint64
}

// New returns an all-walkable grid
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", width, height))
	}
	return &Grid{width: width, height: height, cells: make([]Cell, width*height)}
}

func (g *Grid) Width() int      { return g.width }
func (g *Grid) Height() int     { return g.height }
func (g *Grid) Version() uint64 { return g.version }

// InBounds reports whether p is on the grid
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// At returns the cell at p; out-of-bounds tiles are Blocked
func (g *Grid) At(p Point) Cell {
	if !g.InBounds(p) {
		return Blocked
	}
	return g.cells[p.Y*g.width+p.X]
}

// IsWalkable reports whether p is in bounds and walkable
func (g *Grid) IsWalkable(p Point) bool {
	return g.At(p) == Walkable
}

// BlockedCount returns how many tiles are blocked
func (g *Grid) BlockedCount() int {
	n := 0
	for _, c := range g.cells {
		if c == Blocked {
			n++
		}
	}
	return n
}

// Mask receives obstacle tiles during a rebuild. Out-of-bounds writes are
// ignored.
type Mask struct {
	g *Grid
}

// Block marks p as blocked
func (m Mask) Block(p Point) {
	if m.g.InBounds(p) {
		m.g.cells[p.Y*m.g.width+p.X] = Blocked
	}
}

// BlockRect marks every tile of r as blocked
func (m Mask) BlockRect(r Rect) {
	for _, p := range r.Tiles() {
		m.Block(p)
	}
}

// ObstacleSource contributes blocked tiles to a grid rebuild
type ObstacleSource interface {
	MarkObstacles(mask Mask)
}

// ObstacleFunc adapts a plain function to ObstacleSource
type ObstacleFunc func(mask Mask)

func (f ObstacleFunc) MarkObstacles(mask Mask) { f(mask) }

// Build creates a fresh grid of the given size from every source. The cost is
// O(tiles) plus whatever the sources mark.
func Build(width, height int, version uint64, sources ...ObstacleSource) *Grid {
	g := New(width, height)
	g.version = version
	mask := Mask{g: g}
	for _, src := range sources {
		if src != nil {
			src.MarkObstacles(mask)
		}
	}
	return g
}

// FromRows parses an ASCII map where '#' is blocked and anything else is
// walkable. All rows must share one width.
func FromRows(rows ...string) *Grid {
	if len(rows) == 0 {
		panic("grid: no rows")
	}
	g := New(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.width {
			panic(fmt.Sprintf("grid: row %d has width %d, want %d", y, len(row), g.width))
		}
		for x, ch := range row {
			if ch == '#' {
				g.cells[y*g.width+x] = Blocked
			}
		}
	}
	return g
}
