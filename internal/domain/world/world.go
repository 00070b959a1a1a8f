package world

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// TargetType distinguishes what a TargetID points into
type TargetType uint8

const (
	TargetHarvestable TargetType = iota + 1
	TargetStructure
)

func (t TargetType) String() string {
	switch t {
	case TargetHarvestable:
		return "harvestable"
	case TargetStructure:
		return "structure"
	default:
		return "none"
	}
}

// TargetID is the identity of something a worker can act on
type TargetID struct {
	Type   TargetType
	Handle Handle
}

func (t TargetID) IsZero() bool { return t.Type == 0 }

func (t TargetID) String() string {
	return fmt.Sprintf("%s#%s", t.Type, t.Handle)
}

// HarvestableRef pairs a harvestable with its handle
type HarvestableRef struct {
	Handle Handle
	*Harvestable
}

// StructureRef pairs a structure with its handle
type StructureRef struct {
	Handle Handle
	*Structure
}

// Zone is a rectangular obstruction (rock field, flooded ground) that can be
// cleared later.
type Zone struct {
	ID   string
	Area grid.Rect
}

// ObstacleListener is told whenever something that blocks tiles changes
type ObstacleListener func(reason string)

// StorageListener receives every change to a structure's storage
type StorageListener func(structureKey string, change ledger.Change)

// World owns every harvestable, structure and zone. It answers spatial
// queries for target selection and contributes obstacles to grid rebuilds.
// It does not rebuild the grid itself; it reports obstacle changes to its
// listener and the owner decides when to rebuild.
//
// Not safe for concurrent use; the simulation loop owns it.
type World struct {
	width   int
	height  int
	catalog *resource.Catalog

	harvestables Arena[*Harvestable]
	structures   Arena[*Structure]
	byKey        map[string]Handle
	zones        map[string]Zone

	onObstacles ObstacleListener
	onStorage   StorageListener
	logger      *log.Logger
}

// New creates an empty world
func New(width, height int, catalog *resource.Catalog, logger *log.Logger) *World {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid size %dx%d", width, height))
	}
	if catalog == nil {
		panic("world: nil catalog")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &World{
		width:   width,
		height:  height,
		catalog: catalog,
		byKey:   make(map[string]Handle),
		zones:   make(map[string]Zone),
		logger:  logger,
	}
}

func (w *World) Width() int                  { return w.width }
func (w *World) Height() int                 { return w.height }
func (w *World) Catalog() *resource.Catalog { return w.catalog }

// InBounds reports whether p is on the map
func (w *World) InBounds(p grid.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < w.width && p.Y < w.height
}

// OnObstaclesChanged sets the listener for obstacle changes
func (w *World) OnObstaclesChanged(fn ObstacleListener) {
	w.onObstacles = fn
}

// OnStorageChanged sets the listener for storage mutations. Only structures
// placed afterwards are observed.
func (w *World) OnStorageChanged(fn StorageListener) {
	w.onStorage = fn
}

func (w *World) obstaclesChanged(reason string) {
	w.logger.Debug("obstacles changed", "reason", reason)
	if w.onObstacles != nil {
		w.onObstacles(reason)
	}
}

// Harvestables

// SpawnHarvestable adds a harvestable to the world
func (w *World) SpawnHarvestable(spec HarvestableSpec) (Handle, error) {
	if spec.Kind == "" {
		return Handle{}, shared.NewValidationError("kind", "harvestable kind cannot be empty")
	}
	if !w.InBounds(spec.Position) {
		return Handle{}, shared.NewValidationError("position", fmt.Sprintf("%s is outside the map", spec.Position))
	}
	if spec.Health == 0 {
		return Handle{}, shared.NewValidationError("health", "harvestable health must be positive")
	}
	for i, d := range spec.Drops {
		if !w.catalog.Has(d.Kind) {
			return Handle{}, shared.NewValidationError(fmt.Sprintf("drops[%d]", i), fmt.Sprintf("unknown resource %s", d.Kind))
		}
	}
	if spec.HitYield != nil && spec.HitYield.Amount > 0 && !w.catalog.Has(spec.HitYield.Kind) {
		return Handle{}, shared.NewValidationError("hit_yield", fmt.Sprintf("unknown resource %s", spec.HitYield.Kind))
	}

	h := w.harvestables.Insert(newHarvestable(spec))
	if spec.Blocking {
		w.obstaclesChanged("harvestable spawned")
	}
	return h, nil
}

// Harvestable looks up a harvestable; stale handles miss
func (w *World) Harvestable(h Handle) (*Harvestable, bool) {
	return w.harvestables.Get(h)
}

// DestroyHarvestable marks h destroyed and clears its claim. A destroyed
// entity stays addressable so it can respawn.
func (w *World) DestroyHarvestable(h Handle) bool {
	e, ok := w.harvestables.Get(h)
	if !ok || e.destroyed {
		return false
	}
	e.markDestroyed()
	if e.blocking {
		w.obstaclesChanged("harvestable destroyed")
	}
	return true
}

// Respawn restores a destroyed harvestable to full health
func (w *World) Respawn(h Handle) bool {
	e, ok := w.harvestables.Get(h)
	if !ok || !e.destroyed {
		return false
	}
	e.restore()
	if e.blocking {
		w.obstaclesChanged("harvestable respawned")
	}
	return true
}

// RemoveHarvestable deletes h from the world for good
func (w *World) RemoveHarvestable(h Handle) bool {
	e, ok := w.harvestables.Get(h)
	if !ok {
		return false
	}
	w.harvestables.Remove(h)
	if e.blocking && !e.destroyed {
		w.obstaclesChanged("harvestable removed")
	}
	return true
}

// EntitiesOfType returns every harvestable of kind, destroyed ones included,
// in handle order.
func (w *World) EntitiesOfType(kind EntityKind) []HarvestableRef {
	var out []HarvestableRef
	w.harvestables.Each(func(h Handle, e *Harvestable) bool {
		if e.kind == kind {
			out = append(out, HarvestableRef{Handle: h, Harvestable: e})
		}
		return true
	})
	return out
}

// AllHarvestables returns every harvestable in handle order
func (w *World) AllHarvestables() []HarvestableRef {
	out := make([]HarvestableRef, 0, w.harvestables.Len())
	w.harvestables.Each(func(h Handle, e *Harvestable) bool {
		out = append(out, HarvestableRef{Handle: h, Harvestable: e})
		return true
	})
	return out
}

// Structures

// PlaceStructure adds a building. Keys are unique and the footprint must lie
// on the map.
func (w *World) PlaceStructure(spec StructureSpec) (Handle, error) {
	if spec.Key == "" {
		return Handle{}, shared.NewValidationError("key", "structure key cannot be empty")
	}
	if spec.Kind == "" {
		return Handle{}, shared.NewValidationError("kind", "structure kind cannot be empty")
	}
	if _, dup := w.byKey[spec.Key]; dup {
		return Handle{}, shared.NewValidationError("key", fmt.Sprintf("structure %s already exists", spec.Key))
	}
	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	footprint := grid.RectAt(spec.Position, width, height)
	for _, corner := range []grid.Point{spec.Position, {X: footprint.X + width - 1, Y: footprint.Y + height - 1}} {
		if !w.InBounds(corner) {
			return Handle{}, shared.NewValidationError("position", fmt.Sprintf("footprint of %s leaves the map", spec.Key))
		}
	}
	for k := range spec.Capacity {
		if !w.catalog.Has(k) {
			return Handle{}, shared.NewValidationError("capacity", fmt.Sprintf("unknown resource %s", k))
		}
	}
	for k := range spec.Initial {
		if !w.catalog.Has(k) {
			return Handle{}, shared.NewValidationError("initial", fmt.Sprintf("unknown resource %s", k))
		}
	}

	storage := ledger.NewStorage(w.catalog, spec.Capacity, ledger.WithLogger(w.logger))
	for _, k := range resource.SortKinds(keysOf(spec.Initial)) {
		storage.Add(k, spec.Initial[k])
	}

	s := &Structure{
		kind:      spec.Kind,
		key:       spec.Key,
		position:  spec.Position,
		footprint: footprint,
		storage:   storage,
	}
	if w.onStorage != nil {
		key, fn := spec.Key, w.onStorage
		s.unsubscribe = storage.Subscribe(func(c ledger.Change) { fn(key, c) })
	}
	h := w.structures.Insert(s)
	w.byKey[spec.Key] = h
	w.obstaclesChanged("structure placed")
	return h, nil
}

// Structure looks up a structure; stale handles miss
func (w *World) Structure(h Handle) (*Structure, bool) {
	return w.structures.Get(h)
}

// StructureByKey finds a structure by its unique key
func (w *World) StructureByKey(key string) (Handle, *Structure, bool) {
	h, ok := w.byKey[key]
	if !ok {
		return Handle{}, nil, false
	}
	s, ok := w.structures.Get(h)
	return h, s, ok
}

// RemoveStructure deletes a structure and its storage
func (w *World) RemoveStructure(h Handle) bool {
	s, ok := w.structures.Get(h)
	if !ok {
		return false
	}
	w.structures.Remove(h)
	delete(w.byKey, s.key)
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	w.obstaclesChanged("structure removed")
	return true
}

// StructuresOfType returns every structure of kind in handle order
func (w *World) StructuresOfType(kind StructureKind) []StructureRef {
	var out []StructureRef
	w.structures.Each(func(h Handle, s *Structure) bool {
		if s.kind == kind {
			out = append(out, StructureRef{Handle: h, Structure: s})
		}
		return true
	})
	return out
}

// AllStructures returns every structure in handle order
func (w *World) AllStructures() []StructureRef {
	out := make([]StructureRef, 0, w.structures.Len())
	w.structures.Each(func(h Handle, s *Structure) bool {
		out = append(out, StructureRef{Handle: h, Structure: s})
		return true
	})
	return out
}

// ColonyStock sums every structure's storage per resource kind
func (w *World) ColonyStock() map[resource.Kind]uint32 {
	totals := make(map[resource.Kind]uint32)
	w.structures.Each(func(_ Handle, s *Structure) bool {
		for k, v := range s.storage.Serialize() {
			totals[k] += v
		}
		return true
	})
	return totals
}

// Zones

// AddZone registers an obstruction zone
func (w *World) AddZone(zone Zone) error {
	if zone.ID == "" {
		return shared.NewValidationError("id", "zone id cannot be empty")
	}
	if _, dup := w.zones[zone.ID]; dup {
		return shared.NewValidationError("id", fmt.Sprintf("zone %s already exists", zone.ID))
	}
	w.zones[zone.ID] = zone
	w.obstaclesChanged("zone added")
	return nil
}

// ClearZone removes an obstruction zone
func (w *World) ClearZone(id string) bool {
	if _, ok := w.zones[id]; !ok {
		return false
	}
	delete(w.zones, id)
	w.obstaclesChanged("zone cleared")
	return true
}

// Zones returns all zones sorted by id
func (w *World) Zones() []Zone {
	out := make([]Zone, 0, len(w.zones))
	for _, z := range w.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Targets

// TargetPosition resolves where a target stands
func (w *World) TargetPosition(id TargetID) (grid.Point, bool) {
	switch id.Type {
	case TargetHarvestable:
		if e, ok := w.harvestables.Get(id.Handle); ok {
			return e.position, true
		}
	case TargetStructure:
		if s, ok := w.structures.Get(id.Handle); ok {
			return s.position, true
		}
	}
	return grid.Point{}, false
}

// MarkObstacles implements grid.ObstacleSource: structure footprints, live
// blocking harvestables and zones.
func (w *World) MarkObstacles(mask grid.Mask) {
	w.structures.Each(func(_ Handle, s *Structure) bool {
		mask.BlockRect(s.footprint)
		return true
	})
	w.harvestables.Each(func(_ Handle, e *Harvestable) bool {
		if e.blocking && !e.destroyed {
			mask.Block(e.position)
		}
		return true
	})
	for _, z := range w.zones {
		mask.BlockRect(z.Area)
	}
}

func keysOf(m map[resource.Kind]uint32) []resource.Kind {
	out := make([]resource.Kind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
