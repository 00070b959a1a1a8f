package pathfinding

import (
	"container/heap"
	"math"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
)

const (
	straightCost = 10
	diagonalCost = 14
)

// neighbour offsets in a fixed order; the order plus the heap tie-break makes
// results reproducible on an unchanged grid
var directions = [8]grid.Point{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: -1},
	{X: 1, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: -1},
}

// FindPath runs A* to completion on g. The returned path starts at start and
// ends at end, or is nil when no route exists. The start tile may be blocked
// (a worker standing on a freshly placed footprint); every other tile must be
// walkable. Diagonal steps require both adjacent orthogonal tiles to be
// walkable, so paths never squeeze between two blocked corners.
func FindPath(g *grid.Grid, start, end grid.Point) []grid.Point {
	s := newSearch(g, start, end)
	for !s.done {
		s.step(math.MaxInt32)
	}
	return s.result
}

type node struct {
	index int
	f     int
	h     int
	seq   uint64
}

type openSet []node

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openSet) Push(x interface{}) { *o = append(*o, x.(node)) }

func (o *openSet) Pop() interface{} {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// search is a resumable A* run so the service can spread one query across
// several ticks.
type search struct {
	g     *grid.Grid
	start grid.Point
	end   grid.Point

	open   openSet
	gScore []int
	parent []int
	closed []bool
	seq    uint64

	done   bool
	result []grid.Point
}

func newSearch(g *grid.Grid, start, end grid.Point) *search {
	s := &search{g: g, start: start, end: end}

	switch {
	case !g.InBounds(start):
		s.done = true
		return s
	case start == end:
		s.done = true
		s.result = []grid.Point{start}
		return s
	case !g.IsWalkable(end):
		s.done = true
		return s
	}

	size := g.Width() * g.Height()
	s.gScore = make([]int, size)
	s.parent = make([]int, size)
	s.closed = make([]bool, size)
	for i := range s.gScore {
		s.gScore[i] = math.MaxInt32
		s.parent[i] = -1
	}

	si := s.indexOf(start)
	s.gScore[si] = 0
	h := octile(start, end)
	heap.Push(&s.open, node{index: si, f: h, h: h})
	return s
}

// step expands at most budget nodes and returns how many it used
func (s *search) step(budget int) int {
	used := 0
	for !s.done && used < budget {
		if s.open.Len() == 0 {
			s.finish(nil)
			break
		}

		current := heap.Pop(&s.open).(node)
		used++
		if s.closed[current.index] {
			continue
		}
		s.closed[current.index] = true

		p := s.pointOf(current.index)
		if p == s.end {
			s.finish(s.reconstruct(current.index))
			break
		}

		for i, d := range directions {
			np := p.Add(d)
			if !s.g.IsWalkable(np) {
				continue
			}
			diagonal := i >= 4
			if diagonal {
				if !s.g.IsWalkable(grid.Point{X: p.X + d.X, Y: p.Y}) || !s.g.IsWalkable(grid.Point{X: p.X, Y: p.Y + d.Y}) {
					continue
				}
			}

			ni := s.indexOf(np)
			if s.closed[ni] {
				continue
			}
			cost := straightCost
			if diagonal {
				cost = diagonalCost
			}
			tentative := s.gScore[current.index] + cost
			if tentative >= s.gScore[ni] {
				continue
			}
			s.gScore[ni] = tentative
			s.parent[ni] = current.index
			h := octile(np, s.end)
			s.seq++
			heap.Push(&s.open, node{index: ni, f: tentative + h, h: h, seq: s.seq})
		}
	}
	return used
}

func (s *search) finish(path []grid.Point) {
	s.done = true
	s.result = path
	s.open = nil
	s.gScore = nil
	s.parent = nil
	s.closed = nil
}

func (s *search) reconstruct(endIndex int) []grid.Point {
	var rev []grid.Point
	for i := endIndex; i != -1; i = s.parent[i] {
		rev = append(rev, s.pointOf(i))
	}
	path := make([]grid.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

func (s *search) indexOf(p grid.Point) int {
	return p.Y*s.g.Width() + p.X
}

func (s *search) pointOf(i int) grid.Point {
	return grid.Point{X: i % s.g.Width(), Y: i / s.g.Width()}
}

func octile(a, b grid.Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx < dy {
		dx, dy = dy, dx
	}
	return straightCost*(dx-dy) + diagonalCost*dy
}
