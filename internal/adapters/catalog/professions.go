package catalog

import (
	"fmt"
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

type professionFile struct {
	Professions []professionEntry `yaml:"professions" validate:"required,min=1,dive"`
}

type professionEntry struct {
	ID             string            `yaml:"id" validate:"required"`
	CarryCapacity  uint32            `yaml:"carry_capacity" validate:"required,min=1"`
	HarvestSpeed   time.Duration     `yaml:"harvest_speed" validate:"required,gt=0"`
	MoveSpeed      float64           `yaml:"move_speed" validate:"required,gt=0"`
	WorkRadius     float64           `yaml:"work_radius" validate:"min=0"`
	DamagePerHit   uint32            `yaml:"damage_per_hit"`
	HarvestTargets []ruleEntry       `yaml:"harvest_targets" validate:"dive"`
	DepositTargets []ruleEntry       `yaml:"deposit_targets" validate:"dive"`
	Animations     map[string]string `yaml:"animations"`
}

type ruleEntry struct {
	Action            string   `yaml:"action" validate:"required"`
	TargetKinds       []string `yaml:"target_kinds" validate:"required,min=1,dive,required"`
	EligibleResources []string `yaml:"eligible_resources"`
	Priority          uint32   `yaml:"priority"`
}

// LoadProfessions reads profession configs and registers them against catalog
func LoadProfessions(path string, catalog *resource.Catalog) (*profession.Registry, error) {
	if blank(path) {
		return nil, shared.NewValidationError("professions_path", "a professions file is required")
	}

	var file professionFile
	if err := decodeFile(path, &file); err != nil {
		return nil, err
	}

	configs := make([]*profession.Config, 0, len(file.Professions))
	for i, p := range file.Professions {
		cfg, err := p.toConfig()
		if err != nil {
			return nil, fmt.Errorf("professions[%d]: %w", i, err)
		}
		configs = append(configs, cfg)
	}

	registry, err := profession.NewRegistry(catalog, configs...)
	if err != nil {
		return nil, fmt.Errorf("failed to register professions: %w", err)
	}
	return registry, nil
}

func (p professionEntry) toConfig() (*profession.Config, error) {
	harvest, err := toRules("harvest_targets", p.HarvestTargets)
	if err != nil {
		return nil, err
	}
	deposit, err := toRules("deposit_targets", p.DepositTargets)
	if err != nil {
		return nil, err
	}
	return &profession.Config{
		ID:                p.ID,
		CarryCapacity:     p.CarryCapacity,
		HarvestSpeed:      p.HarvestSpeed,
		MoveSpeed:         p.MoveSpeed,
		WorkRadius:        p.WorkRadius,
		DamagePerHit:      p.DamagePerHit,
		HarvestTargets:    harvest,
		DepositTargets:    deposit,
		AnimationBindings: p.Animations,
	}, nil
}

func toRules(field string, entries []ruleEntry) ([]profession.TargetRule, error) {
	rules := make([]profession.TargetRule, 0, len(entries))
	for i, e := range entries {
		action, err := profession.ParseAction(e.Action)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		var eligible resource.KindSet
		if len(e.EligibleResources) > 0 {
			kinds := make([]resource.Kind, 0, len(e.EligibleResources))
			for _, k := range e.EligibleResources {
				kinds = append(kinds, resource.Kind(k))
			}
			eligible = resource.NewKindSet(kinds...)
		}
		rules = append(rules, profession.TargetRule{
			Action:            action,
			TargetKinds:       e.TargetKinds,
			EligibleResources: eligible,
			Priority:          e.Priority,
		})
	}
	return rules, nil
}
