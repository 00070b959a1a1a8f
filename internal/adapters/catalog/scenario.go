package catalog

import (
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// Layout is a scenario file: optional map dimensions plus initial content.
// Zero dimensions and an unset seed defer to the daemon config.
type Layout struct {
	Width    int
	Height   int
	Seed     int64
	HasSeed  bool
	Scenario *simulation.Scenario
}

type scenarioFile struct {
	Width        int                `yaml:"width" validate:"min=0"`
	Height       int                `yaml:"height" validate:"min=0"`
	Seed         *int64             `yaml:"seed"`
	Name         string             `yaml:"name"`
	Structures   []structureEntry   `yaml:"structures" validate:"dive"`
	Harvestables []harvestableEntry `yaml:"harvestables" validate:"dive"`
	Zones        []zoneEntry        `yaml:"zones" validate:"dive"`
	Workers      []workerEntry      `yaml:"workers" validate:"dive"`
}

type structureEntry struct {
	Kind     string            `yaml:"kind" validate:"required"`
	Key      string            `yaml:"key"`
	X        int               `yaml:"x" validate:"min=0"`
	Y        int               `yaml:"y" validate:"min=0"`
	Width    int               `yaml:"width" validate:"min=0"`
	Height   int               `yaml:"height" validate:"min=0"`
	Capacity map[string]uint32 `yaml:"capacity"`
	Initial  map[string]uint32 `yaml:"initial"`
}

type harvestableEntry struct {
	Kind     string      `yaml:"kind" validate:"required"`
	X        int         `yaml:"x" validate:"min=0"`
	Y        int         `yaml:"y" validate:"min=0"`
	Health   uint32      `yaml:"health" validate:"required,min=1"`
	Blocking bool        `yaml:"blocking"`
	Drops    []dropEntry `yaml:"drops" validate:"dive"`
	HitYield *yieldEntry `yaml:"hit_yield"`
}

// dropEntry without a chance always drops
type dropEntry struct {
	Kind   string   `yaml:"kind" validate:"required"`
	Amount uint32   `yaml:"amount" validate:"required,min=1"`
	Chance *float64 `yaml:"chance" validate:"omitempty,min=0,max=1"`
}

type yieldEntry struct {
	Kind   string `yaml:"kind" validate:"required"`
	Amount uint32 `yaml:"amount" validate:"required,min=1"`
}

type zoneEntry struct {
	ID     string `yaml:"id" validate:"required"`
	X      int    `yaml:"x" validate:"min=0"`
	Y      int    `yaml:"y" validate:"min=0"`
	Width  int    `yaml:"width" validate:"required,min=1"`
	Height int    `yaml:"height" validate:"required,min=1"`
}

type workerEntry struct {
	ID         string `yaml:"id"`
	Profession string `yaml:"profession" validate:"required"`
	X          int    `yaml:"x" validate:"min=0"`
	Y          int    `yaml:"y" validate:"min=0"`
	AssignTo   string `yaml:"assign_to"`
}

// LoadScenario reads a scenario file. Every resource kind it mentions must
// be known to catalog. An empty path yields an empty layout.
func LoadScenario(path string, catalog *resource.Catalog) (*Layout, error) {
	if blank(path) {
		return &Layout{Scenario: &simulation.Scenario{}}, nil
	}
	if catalog == nil {
		catalog = resource.DefaultCatalog()
	}

	var file scenarioFile
	if err := decodeFile(path, &file); err != nil {
		return nil, err
	}

	s := &simulation.Scenario{Name: file.Name}
	kinds := kindChecker{catalog: catalog}

	for i, e := range file.Structures {
		field := fmt.Sprintf("structures[%d]", i)
		s.Structures = append(s.Structures, world.StructureSpec{
			Kind:     world.StructureKind(e.Kind),
			Key:      e.Key,
			Position: grid.Point{X: e.X, Y: e.Y},
			Width:    e.Width,
			Height:   e.Height,
			Capacity: kinds.amounts(field+".capacity", e.Capacity),
			Initial:  kinds.amounts(field+".initial", e.Initial),
		})
	}

	for i, e := range file.Harvestables {
		field := fmt.Sprintf("harvestables[%d]", i)
		spec := world.HarvestableSpec{
			Kind:     world.EntityKind(e.Kind),
			Position: grid.Point{X: e.X, Y: e.Y},
			Health:   e.Health,
			Blocking: e.Blocking,
		}
		for j, d := range e.Drops {
			chance := 1.0
			if d.Chance != nil {
				chance = *d.Chance
			}
			spec.Drops = append(spec.Drops, world.Drop{
				Kind:   kinds.kind(fmt.Sprintf("%s.drops[%d]", field, j), d.Kind),
				Amount: d.Amount,
				Chance: chance,
			})
		}
		if e.HitYield != nil {
			spec.HitYield = &world.Yield{
				Kind:   kinds.kind(field+".hit_yield", e.HitYield.Kind),
				Amount: e.HitYield.Amount,
			}
		}
		s.Harvestables = append(s.Harvestables, spec)
	}

	for _, e := range file.Zones {
		s.Zones = append(s.Zones, world.Zone{
			ID:   e.ID,
			Area: grid.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height},
		})
	}

	for _, e := range file.Workers {
		s.Workers = append(s.Workers, simulation.WorkerSpawn{
			ID:         e.ID,
			Profession: e.Profession,
			Position:   grid.Point{X: e.X, Y: e.Y},
			AssignTo:   e.AssignTo,
		})
	}

	if kinds.err != nil {
		return nil, kinds.err
	}

	layout := &Layout{
		Width:    file.Width,
		Height:   file.Height,
		Scenario: s,
	}
	if file.Seed != nil {
		layout.Seed = *file.Seed
		layout.HasSeed = true
	}
	return layout, nil
}

// kindChecker keeps the first unknown-kind error so conversion reads linearly
type kindChecker struct {
	catalog *resource.Catalog
	err     error
}

func (c *kindChecker) kind(field, raw string) resource.Kind {
	k := resource.Kind(raw)
	if c.err == nil && !c.catalog.Has(k) {
		c.err = shared.NewValidationError(field, fmt.Sprintf("unknown resource kind %q", raw))
	}
	return k
}

func (c *kindChecker) amounts(field string, in map[string]uint32) map[resource.Kind]uint32 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[resource.Kind]uint32, len(in))
	for _, raw := range resource.SortKinds(rawKinds(in)) {
		out[c.kind(field, string(raw))] = in[string(raw)]
	}
	return out
}

func rawKinds(in map[string]uint32) []resource.Kind {
	out := make([]resource.Kind, 0, len(in))
	for k := range in {
		out = append(out, resource.Kind(k))
	}
	return out
}
