package world

import (
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// EntityKind names a type of harvestable (tree, rock, berry bush...)
type EntityKind string

// Drop is a resource yielded when a harvestable is destroyed
type Drop struct {
	Kind   resource.Kind
	Amount uint32
	Chance float64
}

// Yield is a resolved quantity of one resource
type Yield struct {
	Kind   resource.Kind
	Amount uint32
}

// HarvestableSpec describes a harvestable to spawn
type HarvestableSpec struct {
	Kind     EntityKind
	Position grid.Point
	Health   uint32
	Drops    []Drop
	HitYield *Yield
	Blocking bool
}

// Harvestable is a world entity that yields resources when hit until its
// health runs out. Workers reference it by Handle and claim it while working
// on it; at most one worker holds the claim.
type Harvestable struct {
	kind      EntityKind
	position  grid.Point
	maxHealth uint32
	health    uint32
	destroyed bool
	drops     []Drop
	hitYield  *Yield
	blocking  bool
	harvester string
}

func newHarvestable(spec HarvestableSpec) *Harvestable {
	drops := make([]Drop, len(spec.Drops))
	copy(drops, spec.Drops)
	var hy *Yield
	if spec.HitYield != nil && spec.HitYield.Amount > 0 {
		y := *spec.HitYield
		hy = &y
	}
	return &Harvestable{
		kind:      spec.Kind,
		position:  spec.Position,
		maxHealth: spec.Health,
		health:    spec.Health,
		drops:     drops,
		hitYield:  hy,
		blocking:  spec.Blocking,
	}
}

func (h *Harvestable) Kind() EntityKind     { return h.kind }
func (h *Harvestable) Position() grid.Point { return h.position }
func (h *Harvestable) Health() uint32       { return h.health }
func (h *Harvestable) MaxHealth() uint32    { return h.maxHealth }
func (h *Harvestable) IsDestroyed() bool    { return h.destroyed }
func (h *Harvestable) IsBlocking() bool     { return h.blocking }
func (h *Harvestable) Harvester() string    { return h.harvester }

// Drops returns a copy of the configured drops
func (h *Harvestable) Drops() []Drop {
	out := make([]Drop, len(h.drops))
	copy(out, h.drops)
	return out
}

// HitYield returns the per-hit increment, if any
func (h *Harvestable) HitYield() (Yield, bool) {
	if h.hitYield == nil {
		return Yield{}, false
	}
	return *h.hitYield, true
}

// Claim marks agentID as the harvester. Fails if destroyed or held by
// another agent; re-claiming by the holder succeeds.
func (h *Harvestable) Claim(agentID string) bool {
	if h.destroyed {
		return false
	}
	if h.harvester != "" && h.harvester != agentID {
		return false
	}
	h.harvester = agentID
	return true
}

// Release clears the claim if agentID holds it
func (h *Harvestable) Release(agentID string) {
	if h.harvester == agentID {
		h.harvester = ""
	}
}

// ClaimedByOther reports whether someone other than agentID holds the claim
func (h *Harvestable) ClaimedByOther(agentID string) bool {
	return h.harvester != "" && h.harvester != agentID
}

// Hit applies damage, saturating at zero, and returns remaining health
func (h *Harvestable) Hit(damage uint32) uint32 {
	if damage >= h.health {
		h.health = 0
	} else {
		h.health -= damage
	}
	return h.health
}

// RollDrops resolves every drop against roll, which must return values in
// [0,1). A drop with chance >= 1 always lands; chance <= 0 never does.
func (h *Harvestable) RollDrops(roll func() float64) []Yield {
	var out []Yield
	for _, d := range h.drops {
		if d.Amount == 0 || d.Chance <= 0 {
			continue
		}
		if d.Chance >= 1 || roll() < d.Chance {
			out = append(out, Yield{Kind: d.Kind, Amount: d.Amount})
		}
	}
	return out
}

func (h *Harvestable) markDestroyed() {
	h.health = 0
	h.destroyed = true
	h.harvester = ""
}

func (h *Harvestable) restore() {
	h.health = h.maxHealth
	h.destroyed = false
	h.harvester = ""
}
