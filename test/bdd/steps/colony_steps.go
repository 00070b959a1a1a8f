package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/application/colony"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
	"github.com/andrescamacho/colony-go/internal/domain/world"
	"github.com/andrescamacho/colony-go/test/helpers"
)

type colonyContext struct {
	engine   *helpers.TestEngine
	mediator mediator.Mediator
	workers  map[string]string
	err      error
}

func (cc *colonyContext) reset() {
	cc.engine = nil
	cc.mediator = nil
	cc.workers = make(map[string]string)
	cc.err = nil
}

func (cc *colonyContext) agent(name string) (*worker.Agent, error) {
	id, ok := cc.workers[name]
	if !ok {
		return nil, fmt.Errorf("no worker named %q", name)
	}
	a, ok := cc.engine.Directory().Get(id)
	if !ok {
		return nil, fmt.Errorf("worker %q (%s) is gone", name, id)
	}
	return a, nil
}

func (cc *colonyContext) treeAt(x, y int) (world.HarvestableRef, error) {
	for _, ref := range cc.engine.World().EntitiesOfType("tree") {
		if ref.Position() == (grid.Point{X: x, Y: y}) {
			return ref, nil
		}
	}
	return world.HarvestableRef{}, fmt.Errorf("no tree at %d,%d", x, y)
}

// Given steps

func (cc *colonyContext) aColony(width, height int) error {
	engine, err := helpers.NewEngine(width, height)
	if err != nil {
		return err
	}
	cc.engine = engine
	cc.mediator = mediator.NewMediator()
	return colony.RegisterHandlers(cc.mediator, engine.Engine, colony.Repositories{
		Ledgers:     helpers.NewMockLedgerSnapshotRepository(),
		Assignments: helpers.NewMockAssignmentRepository(),
		Journal:     helpers.NewMockResourceJournalRepository(),
	}, nil)
}

func (cc *colonyContext) aStockpile(key string, x, y, capacity int, kind string) error {
	_, err := cc.mediator.Send(context.Background(), &commands.PlaceStructureCommand{
		Kind:     "stockpile",
		Key:      key,
		X:        x,
		Y:        y,
		Capacity: map[string]uint32{kind: uint32(capacity)},
	})
	return err
}

func (cc *colonyContext) alreadyStores(key string, amount int, kind string) error {
	_, st, ok := cc.engine.World().StructureByKey(key)
	if !ok {
		return fmt.Errorf("no structure %q", key)
	}
	if added := st.Storage().Add(resource.Kind(kind), uint32(amount)); added != uint32(amount) {
		return fmt.Errorf("%q took only %d of %d %s", key, added, amount, kind)
	}
	return nil
}

func (cc *colonyContext) aTree(blocking string, x, y, health, amount int, kind string) error {
	_, err := cc.engine.World().SpawnHarvestable(world.HarvestableSpec{
		Kind:     "tree",
		Position: grid.Point{X: x, Y: y},
		Health:   uint32(health),
		Blocking: blocking != "",
		Drops:    []world.Drop{{Kind: resource.Kind(kind), Amount: uint32(amount), Chance: 1}},
	})
	return err
}

func (cc *colonyContext) aZone(id string, x1, y1, x2, y2 int) error {
	return cc.engine.World().AddZone(world.Zone{
		ID:   id,
		Area: grid.Rect{X: x1, Y: y1, Width: x2 - x1 + 1, Height: y2 - y1 + 1},
	})
}

func (cc *colonyContext) aWorker(profession, name string, x, y int, assignTo string) error {
	resp, err := cc.mediator.Send(context.Background(), &commands.SpawnWorkerCommand{
		Profession: profession,
		X:          x,
		Y:          y,
		AssignTo:   assignTo,
	})
	if err != nil {
		return err
	}
	cc.workers[name] = resp.(*commands.SpawnWorkerResponse).WorkerID
	return nil
}

func (cc *colonyContext) aWorkerAt(profession, name string, x, y int) error {
	return cc.aWorker(profession, name, x, y, "")
}

func (cc *colonyContext) workerCarries(name string, amount int, kind string) error {
	a, err := cc.agent(name)
	if err != nil {
		return err
	}
	a.Carried().Add(resource.Kind(kind), uint32(amount))
	return nil
}

// When steps

func (cc *colonyContext) theColonyRunsFor(seconds int) error {
	cc.engine.StepEngine(time.Duration(seconds) * time.Second)
	return nil
}

func (cc *colonyContext) iAssign(name, key string) error {
	_, cc.err = cc.mediator.Send(context.Background(), &commands.AssignWorkerCommand{
		WorkerID:     cc.workers[name],
		StructureKey: key,
	})
	return nil
}

func (cc *colonyContext) iChangeProfession(name, profession string) error {
	_, cc.err = cc.mediator.Send(context.Background(), &commands.ChangeProfessionCommand{
		WorkerID:   cc.workers[name],
		Profession: profession,
	})
	return cc.err
}

// Then steps

func (cc *colonyContext) theTreeShouldBeDestroyed(x, y int) error {
	ref, err := cc.treeAt(x, y)
	if err != nil {
		return err
	}
	if !ref.IsDestroyed() {
		return fmt.Errorf("tree at %d,%d still has %d health", x, y, ref.Health())
	}
	return nil
}

func (cc *colonyContext) structureShouldHold(key string, amount int, kind string) error {
	_, st, ok := cc.engine.World().StructureByKey(key)
	if !ok {
		return fmt.Errorf("no structure %q", key)
	}
	return expectUint(fmt.Sprintf("%s in %q", kind, key), uint32(amount), st.Storage().Amount(resource.Kind(kind)))
}

func (cc *colonyContext) workerShouldCarry(name string, amount int, kind string) error {
	a, err := cc.agent(name)
	if err != nil {
		return err
	}
	return expectUint(fmt.Sprintf("%s carried by %q", kind, name), uint32(amount), a.Carried().Amount(resource.Kind(kind)))
}

func (cc *colonyContext) workerShouldCarryNothing(name string) error {
	a, err := cc.agent(name)
	if err != nil {
		return err
	}
	if !a.Carried().IsEmpty() {
		return fmt.Errorf("expected %q to carry nothing, got %v", name, a.Carried().Serialize())
	}
	return nil
}

func (cc *colonyContext) workerShouldHaveBlacklisted(name string, x, y int) error {
	a, err := cc.agent(name)
	if err != nil {
		return err
	}
	ref, err := cc.treeAt(x, y)
	if err != nil {
		return err
	}
	if !a.Blacklist().Contains(world.TargetID{Type: world.TargetHarvestable, Handle: ref.Handle}) {
		return fmt.Errorf("tree at %d,%d is not blacklisted by %q", x, y, name)
	}
	if ref.Harvester() != "" {
		return fmt.Errorf("tree at %d,%d is still claimed by %s", x, y, ref.Harvester())
	}
	return nil
}

func (cc *colonyContext) workerShouldBeAt(name, state string, x, y int) error {
	a, err := cc.agent(name)
	if err != nil {
		return err
	}
	if a.State().String() != state {
		return fmt.Errorf("expected %q to be %s, got %s", name, state, a.State())
	}
	if a.Position() != (grid.Point{X: x, Y: y}) {
		return fmt.Errorf("expected %q at %d,%d, got %s", name, x, y, a.Position())
	}
	return nil
}

func (cc *colonyContext) theCommandShouldFailWith(fragment string) error {
	if cc.err == nil {
		return fmt.Errorf("expected the command to fail with %q, but it succeeded", fragment)
	}
	if !strings.Contains(cc.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %q", fragment, cc.err.Error())
	}
	return nil
}

func (cc *colonyContext) structureShouldBeAssignedTo(key, name string) error {
	holder, ok := cc.engine.Assignments().WorkerFor(key)
	if !ok {
		return fmt.Errorf("%q has no assigned worker", key)
	}
	if holder != cc.workers[name] {
		return fmt.Errorf("expected %q assigned to %q, got %s", key, name, holder)
	}
	return nil
}

func (cc *colonyContext) workerShouldBeA(name, profession string) error {
	a, err := cc.agent(name)
	if err != nil {
		return err
	}
	if a.Profession() != profession {
		return fmt.Errorf("expected %q to be a %s, got %s", name, profession, a.Profession())
	}
	return nil
}

// InitializeColonyScenario registers the engine-driven colony steps
func InitializeColonyScenario(ctx *godog.ScenarioContext) {
	cc := &colonyContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	ctx.Step(`^a (\d+)x(\d+) colony$`, cc.aColony)
	ctx.Step(`^a stockpile "([^"]*)" at (\d+),(\d+) holding up to (\d+) (\w+)$`, cc.aStockpile)
	ctx.Step(`^"([^"]*)" already stores (\d+) (\w+)$`, cc.alreadyStores)
	ctx.Step(`^a (blocking )?tree at (\d+),(\d+) with (\d+) health dropping (\d+) (\w+)$`, cc.aTree)
	ctx.Step(`^a zone "([^"]*)" covering (\d+),(\d+) to (\d+),(\d+)$`, cc.aZone)
	ctx.Step(`^a (woodcutter|hauler) "([^"]*)" at (\d+),(\d+) assigned to "([^"]*)"$`, cc.aWorker)
	ctx.Step(`^a (woodcutter|hauler) "([^"]*)" at (\d+),(\d+)$`, cc.aWorkerAt)
	ctx.Step(`^"([^"]*)" carries (\d+) (\w+)$`, cc.workerCarries)

	ctx.Step(`^the colony runs for (\d+) seconds$`, cc.theColonyRunsFor)
	ctx.Step(`^I assign "([^"]*)" to "([^"]*)"$`, cc.iAssign)
	ctx.Step(`^I change "([^"]*)" to a (\w+)$`, cc.iChangeProfession)

	ctx.Step(`^the tree at (\d+),(\d+) should be destroyed$`, cc.theTreeShouldBeDestroyed)
	ctx.Step(`^"([^"]*)" should hold (\d+) (\w+)$`, cc.structureShouldHold)
	ctx.Step(`^"([^"]*)" should carry nothing$`, cc.workerShouldCarryNothing)
	ctx.Step(`^"([^"]*)" should carry (\d+) (\w+)$`, cc.workerShouldCarry)
	ctx.Step(`^"([^"]*)" should have blacklisted the tree at (\d+),(\d+)$`, cc.workerShouldHaveBlacklisted)
	ctx.Step(`^"([^"]*)" should be "([^"]*)" at (\d+),(\d+)$`, cc.workerShouldBeAt)
	ctx.Step(`^the command should fail with "([^"]*)"$`, cc.theCommandShouldFailWith)
	ctx.Step(`^"([^"]*)" should be assigned to "([^"]*)"$`, cc.structureShouldBeAssignedTo)
	ctx.Step(`^"([^"]*)" should be a (\w+)$`, cc.workerShouldBeA)
}
