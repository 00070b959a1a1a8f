package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/colony"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/world"
	"github.com/andrescamacho/colony-go/test/helpers"
)

// persistenceContext drives a colony whose repositories live in the shared
// test database, so a "restart" is a fresh engine over the same rows
type persistenceContext struct {
	scenario    *simulation.Scenario
	engine      *helpers.TestEngine
	mediator    mediator.Mediator
	ledgers     *persistence.GormLedgerSnapshotRepository
	assignments *persistence.GormAssignmentRepository
	journalRepo *persistence.GormResourceJournalRepository

	restoredState       *commands.RestoreStateResponse
	restoredAssignments *commands.RestoreAssignmentsResponse
	history             []common.JournalEntry
}

func (pc *persistenceContext) reset() error {
	*pc = persistenceContext{}
	return helpers.TruncateAllTables()
}

// boot builds an engine from the remembered scenario and wires the handlers
// to the database-backed repositories
func (pc *persistenceContext) boot() error {
	engine, err := helpers.NewEngine(16, 16)
	if err != nil {
		return err
	}
	if _, err := engine.Load(pc.scenario); err != nil {
		return err
	}

	db := helpers.SharedTestDB
	pc.ledgers = persistence.NewGormLedgerSnapshotRepository(db)
	pc.assignments = persistence.NewGormAssignmentRepository(db)
	pc.journalRepo = persistence.NewGormResourceJournalRepository(db)

	journal := simulation.NewJournal(pc.journalRepo, engine.Clock, 100)
	engine.Bus().Subscribe(journal.Handle)

	m := mediator.NewMediator()
	if err := colony.RegisterHandlers(m, engine.Engine, colony.Repositories{
		Ledgers:     pc.ledgers,
		Assignments: pc.assignments,
		Journal:     pc.journalRepo,
	}, journal); err != nil {
		return err
	}
	pc.engine, pc.mediator = engine, m
	return nil
}

func (pc *persistenceContext) depot(key string) (*world.Structure, error) {
	_, st, ok := pc.engine.World().StructureByKey(key)
	if !ok {
		return nil, fmt.Errorf("no structure %q", key)
	}
	return st, nil
}

// Given steps

func (pc *persistenceContext) aPersistedColonyWithAStockpile(key string, capacity int, kind string) error {
	pc.scenario = &simulation.Scenario{
		Name: "persisted",
		Structures: []world.StructureSpec{{
			Kind:     "stockpile",
			Key:      key,
			Position: grid.Point{X: 2, Y: 2},
			Capacity: map[resource.Kind]uint32{resource.Kind(kind): uint32(capacity)},
		}},
	}
	return pc.boot()
}

func (pc *persistenceContext) receives(key string, amount int, kind string) error {
	st, err := pc.depot(key)
	if err != nil {
		return err
	}
	st.Storage().Add(resource.Kind(kind), uint32(amount))
	return nil
}

func (pc *persistenceContext) aSavedLedgerForStructure(key string, amount int, kind string) error {
	return pc.ledgers.Save(context.Background(), common.LedgerSnapshot{
		Owner:   events.Owner{Type: events.OwnerStructure, Key: key},
		Amounts: map[resource.Kind]uint32{resource.Kind(kind): uint32(amount)},
		SavedAt: time.Now(),
	})
}

func (pc *persistenceContext) aHaulerAssignedTo(name, key string) error {
	ctx := context.Background()
	resp, err := pc.mediator.Send(ctx, &commands.SpawnWorkerCommand{Profession: "hauler"})
	if err != nil {
		return fmt.Errorf("spawning %s: %w", name, err)
	}
	// the assign command is the path that records the binding
	_, err = pc.mediator.Send(ctx, &commands.AssignWorkerCommand{
		WorkerID:     resp.(*commands.SpawnWorkerResponse).WorkerID,
		StructureKey: key,
	})
	return err
}

// When steps

func (pc *persistenceContext) iSaveTheColony() error {
	_, err := pc.mediator.Send(context.Background(), &commands.SaveStateCommand{})
	return err
}

func (pc *persistenceContext) theColonyRestarts() error {
	return pc.boot()
}

func (pc *persistenceContext) iRestoreTheColony() error {
	resp, err := pc.mediator.Send(context.Background(), &commands.RestoreStateCommand{})
	if err != nil {
		return err
	}
	pc.restoredState = resp.(*commands.RestoreStateResponse)
	return nil
}

func (pc *persistenceContext) iRestoreTheAssignments() error {
	resp, err := pc.mediator.Send(context.Background(), &commands.RestoreAssignmentsCommand{})
	if err != nil {
		return err
	}
	pc.restoredAssignments = resp.(*commands.RestoreAssignmentsResponse)
	return nil
}

// Then steps

func (pc *persistenceContext) theRestoredDepotShouldHold(amount int, kind string) error {
	st, err := pc.depot(pc.scenario.Structures[0].Key)
	if err != nil {
		return err
	}
	return expectUint("restored "+kind, uint32(amount), st.Storage().Amount(resource.Kind(kind)))
}

func (pc *persistenceContext) ledgersShouldHaveBeen(n int, what string) error {
	if pc.restoredState == nil {
		return fmt.Errorf("the colony was not restored")
	}
	got := pc.restoredState.Restored
	if what == "offered" {
		got = pc.restoredState.Offered
	}
	if got != n {
		return fmt.Errorf("expected %d ledgers %s, got %d", n, what, got)
	}
	return nil
}

func (pc *persistenceContext) assignmentsShouldHaveBeen(n int, what string) error {
	if pc.restoredAssignments == nil {
		return fmt.Errorf("the assignments were not restored")
	}
	got := pc.restoredAssignments.Restored
	if what == "released" {
		got = pc.restoredAssignments.Released
	}
	if got != n {
		return fmt.Errorf("expected %d assignments %s, got %d", n, what, got)
	}
	return nil
}

func (pc *persistenceContext) noAssignmentShouldRemainActive() error {
	active, err := pc.assignments.FindActive(context.Background())
	if err != nil {
		return err
	}
	if len(active) != 0 {
		return fmt.Errorf("expected no active assignments, got %d", len(active))
	}
	return nil
}

func (pc *persistenceContext) theHistoryShouldList(key string, n int) error {
	resp, err := pc.mediator.Send(context.Background(), &queries.ResourceHistoryQuery{
		OwnerType: string(events.OwnerStructure),
		OwnerKey:  key,
	})
	if err != nil {
		return err
	}
	pc.history = resp.(*queries.ResourceHistoryResponse).Entries
	if len(pc.history) != n {
		return fmt.Errorf("expected %d history entries for %q, got %d", n, key, len(pc.history))
	}
	return nil
}

func (pc *persistenceContext) theNewestChangeShouldLeave(key string, amount int, kind string) error {
	if len(pc.history) == 0 {
		return fmt.Errorf("no history loaded for %q", key)
	}
	newest := pc.history[0]
	if newest.Kind != resource.Kind(kind) {
		return fmt.Errorf("expected newest change to be %s, got %s", kind, newest.Kind)
	}
	return expectUint("newest "+kind+" level", uint32(amount), newest.New)
}

// InitializePersistenceScenario registers the save and restore steps. The
// shared test database must be initialized first.
func InitializePersistenceScenario(ctx *godog.ScenarioContext) {
	pc := &persistenceContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, pc.reset()
	})

	ctx.Step(`^a persisted colony with a stockpile "([^"]*)" holding up to (\d+) (\w+)$`, pc.aPersistedColonyWithAStockpile)
	ctx.Step(`^"([^"]*)" receives (\d+) (\w+)$`, pc.receives)
	ctx.Step(`^a saved ledger for structure "([^"]*)" holding (\d+) (\w+)$`, pc.aSavedLedgerForStructure)
	ctx.Step(`^a hauler "([^"]*)" assigned to "([^"]*)"$`, pc.aHaulerAssignedTo)

	ctx.Step(`^I save the colony$`, pc.iSaveTheColony)
	ctx.Step(`^the colony restarts$`, pc.theColonyRestarts)
	ctx.Step(`^I restore the colony$`, pc.iRestoreTheColony)
	ctx.Step(`^I restore the assignments$`, pc.iRestoreTheAssignments)

	ctx.Step(`^the restored depot should hold (\d+) (\w+)$`, pc.theRestoredDepotShouldHold)
	ctx.Step(`^(\d+) ledgers? should have been (offered|restored)$`, pc.ledgersShouldHaveBeen)
	ctx.Step(`^(\d+) assignments? should have been (restored|released)$`, pc.assignmentsShouldHaveBeen)
	ctx.Step(`^no assignment should remain active$`, pc.noAssignmentShouldRemainActive)
	ctx.Step(`^the history of "([^"]*)" should list (\d+) changes$`, pc.theHistoryShouldList)
	ctx.Step(`^the newest change of "([^"]*)" should leave (\d+) (\w+)$`, pc.theNewestChangeShouldLeave)
}
