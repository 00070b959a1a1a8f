package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/domain/assignment"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/targeting"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

var targetingEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// gatherer is a worker stand-in the selector can query
type gatherer struct {
	pos       grid.Point
	cfg       *profession.Config
	blacklist *targeting.Blacklist
	carried   *ledger.Ledger
}

func (g *gatherer) ID() string                      { return "gatherer" }
func (g *gatherer) Position() grid.Point            { return g.pos }
func (g *gatherer) Config() *profession.Config      { return g.cfg }
func (g *gatherer) Blacklist() *targeting.Blacklist { return g.blacklist }
func (g *gatherer) CarriedKinds() []resource.Kind   { return g.carried.Kinds() }

type targetingContext struct {
	world       *world.World
	assignments *assignment.Registry
	gatherer    *gatherer
	now         time.Time
	target      *targeting.Target
}

func (tc *targetingContext) reset() {
	tc.world = nil
	tc.assignments = assignment.NewRegistry(nil)
	tc.gatherer = nil
	tc.now = targetingEpoch
	tc.target = nil
}

// Given steps

func (tc *targetingContext) aWorld(width, height int) error {
	tc.world = world.New(width, height, resource.DefaultCatalog(), nil)
	return nil
}

func (tc *targetingContext) aGathererWithHarvestRules(x, y int, table *godog.Table) error {
	cfg := &profession.Config{
		ID:            "gatherer",
		CarryCapacity: 10,
		HarvestSpeed:  time.Second,
		MoveSpeed:     1,
		DamagePerHit:  10,
		DepositTargets: []profession.TargetRule{
			{Action: profession.DepositToStructure, TargetKinds: []string{"stockpile"}, Priority: 1},
		},
	}
	for _, row := range table.Rows[1:] {
		action, err := profession.ParseAction(cellValue(table, row, "action"))
		if err != nil {
			return err
		}
		priority, err := strconv.ParseUint(cellValue(table, row, "priority"), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid priority: %w", err)
		}
		cfg.HarvestTargets = append(cfg.HarvestTargets, profession.TargetRule{
			Action:      action,
			TargetKinds: strings.Split(cellValue(table, row, "target_kinds"), ","),
			Priority:    uint32(priority),
		})
	}
	tc.gatherer = &gatherer{
		pos:       grid.Point{X: x, Y: y},
		cfg:       cfg,
		blacklist: targeting.NewBlacklist(tc.now, targeting.DefaultClearInterval),
		carried:   ledger.NewCarried(resource.DefaultCatalog(), cfg.CarryCapacity),
	}
	return nil
}

func (tc *targetingContext) spawn(kind string, x, y int) (world.Handle, error) {
	return tc.world.SpawnHarvestable(world.HarvestableSpec{
		Kind:     world.EntityKind(kind),
		Position: grid.Point{X: x, Y: y},
		Health:   20,
		Drops:    []world.Drop{{Kind: resource.Wood, Amount: 4, Chance: 1}},
	})
}

func (tc *targetingContext) anEntityAt(kind string, x, y int) error {
	_, err := tc.spawn(kind, x, y)
	return err
}

func (tc *targetingContext) aDestroyedEntityAt(kind string, x, y int) error {
	h, err := tc.spawn(kind, x, y)
	if err != nil {
		return err
	}
	tc.world.DestroyHarvestable(h)
	return nil
}

func (tc *targetingContext) anEntityClaimedBy(kind string, x, y int, owner string) error {
	h, err := tc.spawn(kind, x, y)
	if err != nil {
		return err
	}
	e, _ := tc.world.Harvestable(h)
	if !e.Claim(owner) {
		return fmt.Errorf("could not claim %s at %d,%d", kind, x, y)
	}
	return nil
}

func (tc *targetingContext) entityAt(kind string, x, y int) (world.TargetID, error) {
	for _, ref := range tc.world.EntitiesOfType(world.EntityKind(kind)) {
		if ref.Position() == (grid.Point{X: x, Y: y}) {
			return world.TargetID{Type: world.TargetHarvestable, Handle: ref.Handle}, nil
		}
	}
	return world.TargetID{}, fmt.Errorf("no %s at %d,%d", kind, x, y)
}

func (tc *targetingContext) theGathererHasBlacklisted(kind string, x, y int) error {
	id, err := tc.entityAt(kind, x, y)
	if err != nil {
		return err
	}
	tc.gatherer.blacklist.Add(id)
	return nil
}

func (tc *targetingContext) theGathererHasBlacklistedStructure(key string) error {
	h, _, ok := tc.world.StructureByKey(key)
	if !ok {
		return fmt.Errorf("no structure %q", key)
	}
	tc.gatherer.blacklist.Add(world.TargetID{Type: world.TargetStructure, Handle: h})
	return nil
}

func (tc *targetingContext) aStockpileHoldingUpTo(key string, x, y, capacity int, kind string) error {
	_, err := tc.world.PlaceStructure(world.StructureSpec{
		Kind:     "stockpile",
		Key:      key,
		Position: grid.Point{X: x, Y: y},
		Capacity: map[resource.Kind]uint32{resource.Kind(kind): uint32(capacity)},
	})
	return err
}

func (tc *targetingContext) alreadyStores(key string, amount int, kind string) error {
	_, st, ok := tc.world.StructureByKey(key)
	if !ok {
		return fmt.Errorf("no structure %q", key)
	}
	st.Storage().Add(resource.Kind(kind), uint32(amount))
	return nil
}

func (tc *targetingContext) theGathererIsAssignedTo(key string) error {
	_, err := tc.assignments.Assign(tc.gatherer.ID(), key)
	return err
}

func (tc *targetingContext) theGathererCarries(amount int, kind string) error {
	tc.gatherer.carried.Add(resource.Kind(kind), uint32(amount))
	return nil
}

// When steps

func (tc *targetingContext) secondsPass(seconds int) error {
	tc.now = tc.now.Add(time.Duration(seconds) * time.Second)
	tc.gatherer.blacklist.ClearIfDue(tc.now)
	return nil
}

func (tc *targetingContext) theGathererPicksAHarvestTarget() error {
	tc.target, _ = targeting.NewSelector(tc.world, tc.assignments).SelectHarvestTarget(tc.gatherer)
	return nil
}

func (tc *targetingContext) theGathererPicksADepositTarget() error {
	tc.target, _ = targeting.NewSelector(tc.world, tc.assignments).SelectDepositTarget(tc.gatherer)
	return nil
}

// Then steps

func (tc *targetingContext) theChosenTargetShouldBe(kind string, x, y int) error {
	want, err := tc.entityAt(kind, x, y)
	if err != nil {
		return err
	}
	if tc.target == nil {
		return fmt.Errorf("expected the %s at %d,%d, got no target", kind, x, y)
	}
	if tc.target.ID != want {
		return fmt.Errorf("expected the %s at %d,%d, got target at %v", kind, x, y, tc.target.Position)
	}
	return nil
}

func (tc *targetingContext) theDepositTargetShouldBe(key string) error {
	if tc.target == nil {
		return fmt.Errorf("expected deposit target %q, got none", key)
	}
	st, ok := tc.world.Structure(tc.target.ID.Handle)
	if !ok {
		return fmt.Errorf("deposit target is not a live structure")
	}
	if st.Key() != key {
		return fmt.Errorf("expected deposit target %q, got %q", key, st.Key())
	}
	return nil
}

func (tc *targetingContext) theGathererShouldHaveNoTarget() error {
	if tc.target != nil {
		return fmt.Errorf("expected no target, got %s at %v", tc.target.Action, tc.target.Position)
	}
	return nil
}

// InitializeTargetingScenario registers the target selection step definitions
func InitializeTargetingScenario(ctx *godog.ScenarioContext) {
	tc := &targetingContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a (\d+)x(\d+) world$`, tc.aWorld)
	ctx.Step(`^a gatherer at (\d+),(\d+) with harvest rules:$`, tc.aGathererWithHarvestRules)
	ctx.Step(`^a destroyed (\w+) at (\d+),(\d+)$`, tc.aDestroyedEntityAt)
	ctx.Step(`^a (\w+) at (\d+),(\d+) claimed by "([^"]*)"$`, tc.anEntityClaimedBy)
	ctx.Step(`^a (tree|bush|rock) at (\d+),(\d+)$`, tc.anEntityAt)
	ctx.Step(`^the gatherer has blacklisted the (\w+) at (\d+),(\d+)$`, tc.theGathererHasBlacklisted)
	ctx.Step(`^the gatherer has blacklisted "([^"]*)"$`, tc.theGathererHasBlacklistedStructure)
	ctx.Step(`^a stockpile "([^"]*)" at (\d+),(\d+) holding up to (\d+) (\w+)$`, tc.aStockpileHoldingUpTo)
	ctx.Step(`^"([^"]*)" already stores (\d+) (\w+)$`, tc.alreadyStores)
	ctx.Step(`^the gatherer is assigned to "([^"]*)"$`, tc.theGathererIsAssignedTo)
	ctx.Step(`^the gatherer carries (\d+) (\w+)$`, tc.theGathererCarries)

	ctx.Step(`^(\d+) seconds pass$`, tc.secondsPass)
	ctx.Step(`^the gatherer picks a harvest target$`, tc.theGathererPicksAHarvestTarget)
	ctx.Step(`^the gatherer picks a deposit target$`, tc.theGathererPicksADepositTarget)

	ctx.Step(`^the chosen target should be the (\w+) at (\d+),(\d+)$`, tc.theChosenTargetShouldBe)
	ctx.Step(`^the deposit target should be "([^"]*)"$`, tc.theDepositTargetShouldBe)
	ctx.Step(`^the gatherer should have no target$`, tc.theGathererShouldHaveNoTarget)
}
