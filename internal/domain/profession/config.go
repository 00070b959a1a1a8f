package profession

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// Action is what a worker does with a target chosen by a rule
type Action uint8

const (
	HarvestEntity Action = iota + 1
	HarvestStructure
	DepositToStructure
)

func (a Action) String() string {
	switch a {
	case HarvestEntity:
		return "harvest_entity"
	case HarvestStructure:
		return "harvest_structure"
	case DepositToStructure:
		return "deposit_to_structure"
	default:
		return "unknown"
	}
}

// ParseAction maps a config string to an Action
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "harvest_entity":
		return HarvestEntity, nil
	case "harvest_structure":
		return HarvestStructure, nil
	case "deposit_to_structure", "deposit":
		return DepositToStructure, nil
	default:
		return 0, shared.NewValidationError("action", fmt.Sprintf("unknown action %q", s))
	}
}

// TargetRule is one priority-ordered eligibility filter. TargetKinds names
// harvestable kinds for HarvestEntity rules and structure kinds otherwise.
// An empty EligibleResources set means any resource.
type TargetRule struct {
	Action            Action
	TargetKinds       []string
	EligibleResources resource.KindSet
	Priority          uint32
}

// AllowsResource reports whether the rule cares about kind
func (r TargetRule) AllowsResource(kind resource.Kind) bool {
	return len(r.EligibleResources) == 0 || r.EligibleResources.Contains(kind)
}

// SortedByPriority returns rules ordered by ascending priority. The sort is
// stable: equal priorities keep their configured order.
func SortedByPriority(rules []TargetRule) []TargetRule {
	out := make([]TargetRule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Config is the static descriptor shared by every worker of one profession.
// Workers hold a pointer to it; changing profession swaps the pointer.
type Config struct {
	ID                string
	CarryCapacity     uint32
	HarvestSpeed      time.Duration
	MoveSpeed         float64 // tiles per second
	WorkRadius        float64 // 0 means unlimited
	DamagePerHit      uint32
	HarvestTargets    []TargetRule
	DepositTargets    []TargetRule
	AnimationBindings map[string]string
}

// Validate checks the config is usable by a worker
func (c *Config) Validate(catalog *resource.Catalog) error {
	if c.ID == "" {
		return shared.NewValidationError("id", "profession id cannot be empty")
	}
	if c.CarryCapacity == 0 {
		return shared.NewValidationError("carry_capacity", fmt.Sprintf("profession %s must carry at least 1", c.ID))
	}
	if c.HarvestSpeed <= 0 {
		return shared.NewValidationError("harvest_speed", fmt.Sprintf("profession %s needs a positive harvest speed", c.ID))
	}
	if c.MoveSpeed <= 0 {
		return shared.NewValidationError("move_speed", fmt.Sprintf("profession %s needs a positive move speed", c.ID))
	}
	if c.WorkRadius < 0 {
		return shared.NewValidationError("work_radius", "work radius cannot be negative")
	}

	check := func(field string, rules []TargetRule, allowed ...Action) error {
		for i, r := range rules {
			name := fmt.Sprintf("%s[%d]", field, i)
			ok := false
			for _, a := range allowed {
				ok = ok || r.Action == a
			}
			if !ok {
				return shared.NewValidationError(name, fmt.Sprintf("action %s not allowed here", r.Action))
			}
			if len(r.TargetKinds) == 0 {
				return shared.NewValidationError(name, "rule needs at least one target kind")
			}
			if catalog != nil {
				for k := range r.EligibleResources {
					if !catalog.Has(k) {
						return shared.NewValidationError(name, fmt.Sprintf("unknown resource %s", k))
					}
				}
			}
		}
		return nil
	}
	if err := check("harvest_targets", c.HarvestTargets, HarvestEntity, HarvestStructure); err != nil {
		return err
	}
	if c.DamagePerHit == 0 {
		for _, r := range c.HarvestTargets {
			if r.Action == HarvestEntity {
				return shared.NewValidationError("damage_per_hit", fmt.Sprintf("profession %s harvests entities but deals no damage", c.ID))
			}
		}
	}
	return check("deposit_targets", c.DepositTargets, DepositToStructure)
}

// Animation returns the animation bound to a state name, if any
func (c *Config) Animation(state string) (string, bool) {
	a, ok := c.AnimationBindings[state]
	return a, ok
}
