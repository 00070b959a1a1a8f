package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/pathfinding"
)

type pathfindingContext struct {
	grid     *grid.Grid
	from, to grid.Point
	path     []grid.Point
	again    []grid.Point
	nearest  grid.Point
	found    bool
}

func (pc *pathfindingContext) reset() {
	*pc = pathfindingContext{}
}

func (pc *pathfindingContext) theMap(doc *godog.DocString) error {
	var rows []string
	for _, line := range strings.Split(doc.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return fmt.Errorf("empty map")
	}
	pc.grid = grid.FromRows(rows...)
	return nil
}

func (pc *pathfindingContext) iFindAPath(x1, y1, x2, y2 int) error {
	pc.from = grid.Point{X: x1, Y: y1}
	pc.to = grid.Point{X: x2, Y: y2}
	pc.path = pathfinding.FindPath(pc.grid, pc.from, pc.to)
	return nil
}

func (pc *pathfindingContext) iFindTheSamePathAgain() error {
	pc.again = pathfinding.FindPath(pc.grid, pc.from, pc.to)
	return nil
}

func (pc *pathfindingContext) iLookForTheNearestWalkableTile(x, y, radius int) error {
	pc.nearest, pc.found = pathfinding.FindNearestWalkableTile(pc.grid, grid.Point{X: x, Y: y}, radius)
	return nil
}

func (pc *pathfindingContext) thePathShouldHaveTiles(n int) error {
	if len(pc.path) != n {
		return fmt.Errorf("expected %d tiles, got %d: %v", n, len(pc.path), pc.path)
	}
	return nil
}

func (pc *pathfindingContext) thePathShouldStartAndEnd(x1, y1, x2, y2 int) error {
	if len(pc.path) == 0 {
		return fmt.Errorf("expected a path, got none")
	}
	if start := pc.path[0]; start != (grid.Point{X: x1, Y: y1}) {
		return fmt.Errorf("path starts at %s", start)
	}
	return pc.thePathShouldEndAt(x2, y2)
}

func (pc *pathfindingContext) thePathShouldEndAt(x, y int) error {
	if len(pc.path) == 0 {
		return fmt.Errorf("expected a path, got none")
	}
	if end := pc.path[len(pc.path)-1]; end != (grid.Point{X: x, Y: y}) {
		return fmt.Errorf("path ends at %s", end)
	}
	return nil
}

func (pc *pathfindingContext) thePathShouldAvoidBlockedTiles() error {
	if len(pc.path) == 0 {
		return fmt.Errorf("expected a path, got none")
	}
	for i, p := range pc.path {
		if !pc.grid.IsWalkable(p) {
			return fmt.Errorf("step %d at %s is blocked", i, p)
		}
	}
	return nil
}

func (pc *pathfindingContext) thereShouldBeNoPath() error {
	if pc.path != nil {
		return fmt.Errorf("expected no path, got %v", pc.path)
	}
	return nil
}

func (pc *pathfindingContext) bothRoutesShouldBeIdentical() error {
	if len(pc.path) == 0 || len(pc.path) != len(pc.again) {
		return fmt.Errorf("routes differ: %v vs %v", pc.path, pc.again)
	}
	for i := range pc.path {
		if pc.path[i] != pc.again[i] {
			return fmt.Errorf("routes differ at step %d: %s vs %s", i, pc.path[i], pc.again[i])
		}
	}
	return nil
}

func (pc *pathfindingContext) theNearestWalkableTileShouldBe(x, y int) error {
	if !pc.found {
		return fmt.Errorf("expected %d,%d, found nothing", x, y)
	}
	if pc.nearest != (grid.Point{X: x, Y: y}) {
		return fmt.Errorf("expected %d,%d, got %s", x, y, pc.nearest)
	}
	return nil
}

func (pc *pathfindingContext) thereShouldBeNoWalkableTile() error {
	if pc.found {
		return fmt.Errorf("expected nothing, got %s", pc.nearest)
	}
	return nil
}

// InitializePathfindingScenario registers the grid pathfinding step definitions
func InitializePathfindingScenario(ctx *godog.ScenarioContext) {
	pc := &pathfindingContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	ctx.Step(`^the map:$`, pc.theMap)
	ctx.Step(`^I find a path from (\d+),(\d+) to (\d+),(\d+)$`, pc.iFindAPath)
	ctx.Step(`^I find the same path again$`, pc.iFindTheSamePathAgain)
	ctx.Step(`^I look for the nearest walkable tile to (\d+),(\d+) within (\d+)$`, pc.iLookForTheNearestWalkableTile)

	ctx.Step(`^the path should have (\d+) tiles$`, pc.thePathShouldHaveTiles)
	ctx.Step(`^the path should start at (\d+),(\d+) and end at (\d+),(\d+)$`, pc.thePathShouldStartAndEnd)
	ctx.Step(`^the path should end at (\d+),(\d+)$`, pc.thePathShouldEndAt)
	ctx.Step(`^the path should avoid blocked tiles$`, pc.thePathShouldAvoidBlockedTiles)
	ctx.Step(`^there should be no path$`, pc.thereShouldBeNoPath)
	ctx.Step(`^both routes should be identical$`, pc.bothRoutesShouldBeIdentical)
	ctx.Step(`^the nearest walkable tile should be (\d+),(\d+)$`, pc.theNearestWalkableTileShouldBe)
	ctx.Step(`^there should be no walkable tile$`, pc.thereShouldBeNoWalkableTile)
}
