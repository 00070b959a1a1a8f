package pathfinding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/pathfinding"
)

func pt(x, y int) grid.Point { return grid.Point{X: x, Y: y} }

func assertContiguous(t *testing.T, g *grid.Grid, path []grid.Point) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		require.True(t, dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 && (dx != 0 || dy != 0), "step %d: %v -> %v", i, path[i-1], path[i])
		require.True(t, g.IsWalkable(path[i]), "step %d lands on blocked %v", i, path[i])
		if dx != 0 && dy != 0 {
			require.True(t, g.IsWalkable(pt(path[i-1].X+dx, path[i-1].Y)), "corner cut at step %d", i)
			require.True(t, g.IsWalkable(pt(path[i-1].X, path[i-1].Y+dy)), "corner cut at step %d", i)
		}
	}
}

func TestFindPath_OpenGridTakesDiagonal(t *testing.T) {
	// Arrange
	g := grid.New(5, 5)

	// Act
	path := pathfinding.FindPath(g, pt(0, 0), pt(4, 4))

	// Assert
	assert.Equal(t, []grid.Point{pt(0, 0), pt(1, 1), pt(2, 2), pt(3, 3), pt(4, 4)}, path)
}

func TestFindPath_RoutesAroundWall(t *testing.T) {
	// Arrange
	g := grid.FromRows(
		".....",
		".###.",
		".#...",
		".#.#.",
		".....",
	)

	// Act
	path := pathfinding.FindPath(g, pt(2, 2), pt(0, 0))

	// Assert
	require.NotNil(t, path)
	assert.Equal(t, pt(2, 2), path[0])
	assert.Equal(t, pt(0, 0), path[len(path)-1])
	assertContiguous(t, g, path)
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	// Arrange: the only diagonal from (0,0) to (1,1) squeezes between two blocks
	g := grid.FromRows(
		".#",
		"#.",
	)

	// Act
	path := pathfinding.FindPath(g, pt(0, 0), pt(1, 1))

	// Assert
	assert.Nil(t, path)
}

func TestFindPath_OneBlockedOrthogonalAlsoPreventsDiagonal(t *testing.T) {
	g := grid.FromRows(
		".#.",
		"...",
	)

	path := pathfinding.FindPath(g, pt(0, 0), pt(2, 0))

	require.NotNil(t, path)
	assertContiguous(t, g, path)
	assert.Equal(t, []grid.Point{pt(0, 0), pt(0, 1), pt(1, 1), pt(2, 1), pt(2, 0)}, path)
}

func TestFindPath_BlockedEndReturnsNil(t *testing.T) {
	g := grid.FromRows(
		"...",
		"..#",
	)

	assert.Nil(t, pathfinding.FindPath(g, pt(0, 0), pt(2, 1)))
}

func TestFindPath_BlockedStartIsAllowed(t *testing.T) {
	g := grid.FromRows(
		"#..",
	)

	path := pathfinding.FindPath(g, pt(0, 0), pt(2, 0))

	assert.Equal(t, []grid.Point{pt(0, 0), pt(1, 0), pt(2, 0)}, path)
}

func TestFindPath_StartEqualsEnd(t *testing.T) {
	g := grid.New(3, 3)

	assert.Equal(t, []grid.Point{pt(1, 1)}, pathfinding.FindPath(g, pt(1, 1), pt(1, 1)))
}

func TestFindPath_OutOfBoundsStart(t *testing.T) {
	g := grid.New(3, 3)

	assert.Nil(t, pathfinding.FindPath(g, pt(-1, 0), pt(1, 1)))
}

func TestFindPath_IsDeterministic(t *testing.T) {
	// Arrange: many equal-cost routes
	g := grid.FromRows(
		"..........",
		"..#....#..",
		"..#.##.#..",
		"......#...",
		"..........",
	)

	// Act
	first := pathfinding.FindPath(g, pt(0, 0), pt(9, 4))

	// Assert
	require.NotNil(t, first)
	assertContiguous(t, g, first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, pathfinding.FindPath(g, pt(0, 0), pt(9, 4)))
	}
}

func TestFindNearestWalkableTile_ScanOrder(t *testing.T) {
	// Arrange: ring 1 around (2,2) is open only at (3,1) and (1,3)
	g := grid.FromRows(
		".....",
		".##..",
		".###.",
		"..##.",
		".....",
	)
	// (3,1) is '.' in row 1, col 3; (1,3) is '.' in row 3, col 1

	// Act
	p, ok := pathfinding.FindNearestWalkableTile(g, pt(2, 2), 3)

	// Assert
	require.True(t, ok)
	assert.Equal(t, pt(3, 1), p, "first walkable in row-major ring order")
}

func TestFindNearestWalkableTile_TargetItselfAndRadiusLimit(t *testing.T) {
	g := grid.FromRows(
		"###",
		"###",
		"###",
	)

	_, ok := pathfinding.FindNearestWalkableTile(g, pt(1, 1), 5)
	assert.False(t, ok)

	open := grid.New(3, 3)
	p, ok := pathfinding.FindNearestWalkableTile(open, pt(1, 1), 0)
	assert.True(t, ok)
	assert.Equal(t, pt(1, 1), p)
}
