package targeting

import (
	"fmt"

	"github.com/andrescamacho/colony-go/internal/domain/assignment"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// Seeker is the view of a worker the selector needs
type Seeker interface {
	ID() string
	Position() grid.Point
	Config() *profession.Config
	Blacklist() *Blacklist
	CarriedKinds() []resource.Kind
}

// Spatial answers "things of type T" queries
type Spatial interface {
	EntitiesOfType(kind world.EntityKind) []world.HarvestableRef
	StructuresOfType(kind world.StructureKind) []world.StructureRef
	StructureByKey(key string) (world.Handle, *world.Structure, bool)
}

// Target is the result of a selection
type Target struct {
	ID       world.TargetID
	Action   profession.Action
	Position grid.Point
	Rule     profession.TargetRule
	Distance float64
	Reason   string
}

// Selector picks harvest and deposit targets for workers.
//
// Business Rules:
// 1. Rules are tried in ascending priority (stable); the first rule with any
//    candidate wins, even if a later rule has a closer one
// 2. Destroyed, claimed-by-another and blacklisted targets are skipped
// 3. Candidates beyond the work radius are skipped (radius 0 = unlimited)
// 4. Nearest by Euclidean distance wins; ties go to the lower handle
// 5. Deposits go to the assigned structure first if it accepts any carried
//    kind and is not blacklisted, otherwise fall through to the rule search
type Selector struct {
	spatial     Spatial
	assignments *assignment.Registry
}

// NewSelector creates a selector over the given world view and assignments.
// assignments may be nil when no worker is ever bound to a structure.
func NewSelector(spatial Spatial, assignments *assignment.Registry) *Selector {
	if spatial == nil {
		panic("targeting: nil spatial index")
	}
	return &Selector{spatial: spatial, assignments: assignments}
}

type candidate struct {
	id       world.TargetID
	position grid.Point
	distSq   int
}

func (c candidate) beats(other candidate) bool {
	if c.distSq != other.distSq {
		return c.distSq < other.distSq
	}
	return c.id.Handle.Less(other.id.Handle)
}

// SelectHarvestTarget returns the best harvest target for seeker
func (s *Selector) SelectHarvestTarget(seeker Seeker) (*Target, bool) {
	cfg := mustConfig(seeker)
	for _, rule := range profession.SortedByPriority(cfg.HarvestTargets) {
		var best *candidate
		switch rule.Action {
		case profession.HarvestEntity:
			best = s.bestEntity(seeker, cfg, rule)
		case profession.HarvestStructure:
			best = s.bestStructure(seeker, cfg, rule, func(st *world.Structure) bool {
				if len(rule.EligibleResources) == 0 {
					return !st.Storage().IsEmpty()
				}
				return st.Storage().HoldsAny(rule.EligibleResources)
			})
		}
		if best != nil {
			return s.result(seeker, rule, *best, fmt.Sprintf("nearest %s (priority %d)", rule.Action, rule.Priority)), true
		}
	}
	return nil, false
}

// SelectDepositTarget returns where seeker should unload
func (s *Selector) SelectDepositTarget(seeker Seeker) (*Target, bool) {
	cfg := mustConfig(seeker)
	carried := seeker.CarriedKinds()
	if len(carried) == 0 {
		return nil, false
	}

	if s.assignments != nil {
		if key, ok := s.assignments.StructureFor(seeker.ID()); ok {
			h, st, found := s.spatial.StructureByKey(key)
			id := world.TargetID{Type: world.TargetStructure, Handle: h}
			blacklisted := found && seeker.Blacklist() != nil && seeker.Blacklist().Contains(id)
			if found && !blacklisted && st.Storage().AcceptsAny(carried) {
				c := candidate{
					id:       id,
					position: st.Position(),
					distSq:   seeker.Position().DistanceSquared(st.Position()),
				}
				rule := profession.TargetRule{Action: profession.DepositToStructure, TargetKinds: []string{string(st.Kind())}}
				return s.result(seeker, rule, c, fmt.Sprintf("assigned structure %s", key)), true
			}
		}
	}

	for _, rule := range profession.SortedByPriority(cfg.DepositTargets) {
		if rule.Action != profession.DepositToStructure {
			continue
		}
		best := s.bestStructure(seeker, cfg, rule, func(st *world.Structure) bool {
			for _, k := range carried {
				if rule.AllowsResource(k) && st.Storage().CanAccept(k) {
					return true
				}
			}
			return false
		})
		if best != nil {
			return s.result(seeker, rule, *best, fmt.Sprintf("nearest deposit (priority %d)", rule.Priority)), true
		}
	}
	return nil, false
}

func (s *Selector) bestEntity(seeker Seeker, cfg *profession.Config, rule profession.TargetRule) *candidate {
	var best *candidate
	for _, kind := range rule.TargetKinds {
		for _, ref := range s.spatial.EntitiesOfType(world.EntityKind(kind)) {
			if ref.IsDestroyed() || ref.ClaimedByOther(seeker.ID()) {
				continue
			}
			if len(rule.EligibleResources) > 0 && !dropsAny(ref.Harvestable, rule) {
				continue
			}
			c := candidate{
				id:       world.TargetID{Type: world.TargetHarvestable, Handle: ref.Handle},
				position: ref.Position(),
			}
			best = s.consider(seeker, cfg, best, c)
		}
	}
	return best
}

func (s *Selector) bestStructure(seeker Seeker, cfg *profession.Config, rule profession.TargetRule, eligible func(*world.Structure) bool) *candidate {
	var best *candidate
	for _, kind := range rule.TargetKinds {
		for _, ref := range s.spatial.StructuresOfType(world.StructureKind(kind)) {
			if !eligible(ref.Structure) {
				continue
			}
			c := candidate{
				id:       world.TargetID{Type: world.TargetStructure, Handle: ref.Handle},
				position: ref.Position(),
			}
			best = s.consider(seeker, cfg, best, c)
		}
	}
	return best
}

// consider applies the blacklist and radius filters and keeps the better of
// best and c
func (s *Selector) consider(seeker Seeker, cfg *profession.Config, best *candidate, c candidate) *candidate {
	if seeker.Blacklist() != nil && seeker.Blacklist().Contains(c.id) {
		return best
	}
	c.distSq = seeker.Position().DistanceSquared(c.position)
	if cfg.WorkRadius > 0 && float64(c.distSq) > cfg.WorkRadius*cfg.WorkRadius {
		return best
	}
	if best == nil || c.beats(*best) {
		return &c
	}
	return best
}

func (s *Selector) result(seeker Seeker, rule profession.TargetRule, c candidate, reason string) *Target {
	return &Target{
		ID:       c.id,
		Action:   rule.Action,
		Position: c.position,
		Rule:     rule,
		Distance: seeker.Position().DistanceTo(c.position),
		Reason:   reason,
	}
}

func dropsAny(h *world.Harvestable, rule profession.TargetRule) bool {
	if y, ok := h.HitYield(); ok && rule.AllowsResource(y.Kind) {
		return true
	}
	for _, d := range h.Drops() {
		if rule.AllowsResource(d.Kind) {
			return true
		}
	}
	return false
}

func mustConfig(seeker Seeker) *profession.Config {
	cfg := seeker.Config()
	if cfg == nil {
		panic(fmt.Sprintf("targeting: worker %s has no config", seeker.ID()))
	}
	return cfg
}
