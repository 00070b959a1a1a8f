package simulation

import (
	"fmt"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// WorkerSpawn places one worker when a scenario loads. An empty ID mints one.
type WorkerSpawn struct {
	ID         string
	Profession string
	Position   grid.Point
	AssignTo   string
}

// Scenario is the initial content of a colony
type Scenario struct {
	Name         string
	Structures   []world.StructureSpec
	Harvestables []world.HarvestableSpec
	Zones        []world.Zone
	Workers      []WorkerSpawn
}

// LoadResult reports what a scenario created
type LoadResult struct {
	Structures   int
	Harvestables int
	Zones        int
	WorkerIDs    []string
}

// Load populates the world from s. Entities are added in file order;
// the first failure aborts and is returned with the offending entry.
func (e *Engine) Load(s *Scenario) (*LoadResult, error) {
	if s == nil {
		return nil, fmt.Errorf("scenario cannot be nil")
	}
	res := &LoadResult{}

	for i, z := range s.Zones {
		if err := e.world.AddZone(z); err != nil {
			return res, fmt.Errorf("zones[%d]: %w", i, err)
		}
		res.Zones++
	}
	for i, spec := range s.Structures {
		if _, err := e.world.PlaceStructure(spec); err != nil {
			return res, fmt.Errorf("structures[%d]: %w", i, err)
		}
		res.Structures++
	}
	for i, spec := range s.Harvestables {
		if _, err := e.world.SpawnHarvestable(spec); err != nil {
			return res, fmt.Errorf("harvestables[%d]: %w", i, err)
		}
		res.Harvestables++
	}
	for i, w := range s.Workers {
		id, err := e.spawn(w)
		if err != nil {
			return res, fmt.Errorf("workers[%d]: %w", i, err)
		}
		res.WorkerIDs = append(res.WorkerIDs, id)
		if w.AssignTo != "" {
			if err := e.Assign(id, w.AssignTo); err != nil {
				return res, fmt.Errorf("workers[%d]: %w", i, err)
			}
		}
	}

	e.logger.Info("scenario loaded",
		"name", s.Name,
		"structures", res.Structures,
		"harvestables", res.Harvestables,
		"zones", res.Zones,
		"workers", len(res.WorkerIDs),
	)
	return res, nil
}

// SpawnWorker creates a worker, validating its position against the map
func (e *Engine) SpawnWorker(profession string, pos grid.Point) (string, error) {
	return e.spawn(WorkerSpawn{Profession: profession, Position: pos})
}

func (e *Engine) spawn(w WorkerSpawn) (string, error) {
	if !e.world.InBounds(w.Position) {
		return "", shared.NewValidationError("position", fmt.Sprintf("position %s is outside the map", w.Position))
	}
	if w.ID != "" {
		if err := e.directory.CreateWithID(w.ID, w.Profession, w.Position); err != nil {
			return "", err
		}
		return w.ID, nil
	}
	return e.directory.Create(w.Profession, w.Position)
}
