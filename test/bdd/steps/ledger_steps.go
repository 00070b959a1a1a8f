package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

type ledgerContext struct {
	catalog *resource.Catalog
	ledger  *ledger.Ledger
	storage *ledger.Storage

	applied  uint32
	deducted bool
	changes  int
}

func (lc *ledgerContext) reset() {
	lc.catalog = resource.DefaultCatalog()
	lc.ledger = nil
	lc.storage = nil
	lc.applied = 0
	lc.deducted = false
	lc.changes = 0
}

// Given steps

func (lc *ledgerContext) aResourceCatalog(table *godog.Table) error {
	defs := make([]resource.Definition, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		stack, err := strconv.ParseUint(cellValue(table, row, "stack_size"), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid stack size: %w", err)
		}
		defs = append(defs, resource.Definition{
			Kind:      resource.Kind(cellValue(table, row, "kind")),
			StackSize: uint32(stack),
		})
	}
	catalog, err := resource.NewCatalog(defs)
	if err != nil {
		return err
	}
	lc.catalog = catalog
	return nil
}

func (lc *ledgerContext) anEmptyLedger() error {
	lc.ledger = ledger.New(lc.catalog)
	lc.ledger.Subscribe(func(ledger.Change) { lc.changes++ })
	return nil
}

func (lc *ledgerContext) anEmptyCarriedLedgerWithCapacity(capacity int) error {
	lc.ledger = ledger.NewCarried(lc.catalog, uint32(capacity))
	lc.ledger.Subscribe(func(ledger.Change) { lc.changes++ })
	return nil
}

func (lc *ledgerContext) aStorageWithCapacity(table *godog.Table) error {
	capacity, err := amountsTable(table, "capacity")
	if err != nil {
		return err
	}
	lc.storage = ledger.NewStorage(lc.catalog, capacity)
	return nil
}

func (lc *ledgerContext) theStorageAlreadyHolds(amount int, kind string) error {
	if lc.storage == nil {
		return fmt.Errorf("no storage defined")
	}
	if got := lc.storage.Add(resource.Kind(kind), uint32(amount)); got != uint32(amount) {
		return fmt.Errorf("storage accepted only %d of %d %s", got, amount, kind)
	}
	return nil
}

// When steps

func (lc *ledgerContext) iAddToTheLedger(amount int, kind string) error {
	if lc.ledger == nil {
		return fmt.Errorf("no ledger defined")
	}
	lc.applied = lc.ledger.Add(resource.Kind(kind), uint32(amount))
	return nil
}

func (lc *ledgerContext) iRemoveFromTheLedger(amount int, kind string) error {
	if lc.ledger == nil {
		return fmt.Errorf("no ledger defined")
	}
	lc.applied = lc.ledger.Remove(resource.Kind(kind), uint32(amount))
	return nil
}

func (lc *ledgerContext) iAddToTheStorage(amount int, kind string) error {
	if lc.storage == nil {
		return fmt.Errorf("no storage defined")
	}
	lc.applied = lc.storage.Add(resource.Kind(kind), uint32(amount))
	return nil
}

func (lc *ledgerContext) iTransferIntoTheStorage(amount int, kind string) error {
	if lc.ledger == nil || lc.storage == nil {
		return fmt.Errorf("transfer needs both a ledger and a storage")
	}
	lc.applied = lc.ledger.Transfer(resource.Kind(kind), uint32(amount), lc.storage)
	return nil
}

func (lc *ledgerContext) iDeductFromTheLedger(table *godog.Table) error {
	cost, err := amountsTable(table, "amount")
	if err != nil {
		return err
	}
	lc.changes = 0
	lc.deducted = lc.ledger.Deduct(cost)
	return nil
}

// Then steps

func (lc *ledgerContext) theLastMutationShouldHaveApplied(amount int) error {
	return expectUint("applied amount", uint32(amount), lc.applied)
}

func (lc *ledgerContext) theLedgerShouldHold(amount int, kind string) error {
	return expectUint("ledger "+kind, uint32(amount), lc.ledger.Amount(resource.Kind(kind)))
}

func (lc *ledgerContext) theLedgerShouldHoldUnitsInTotal(amount int) error {
	return expectUint("ledger total", uint32(amount), lc.ledger.Total())
}

func (lc *ledgerContext) theLedgerShouldBeEmpty() error {
	if !lc.ledger.IsEmpty() {
		return fmt.Errorf("expected empty ledger, got %v", lc.ledger.Serialize())
	}
	return nil
}

func (lc *ledgerContext) theStorageShouldHold(amount int, kind string) error {
	return expectUint("storage "+kind, uint32(amount), lc.storage.Amount(resource.Kind(kind)))
}

func (lc *ledgerContext) shouldExistAcrossBoth(amount int, kind string) error {
	k := resource.Kind(kind)
	return expectUint("combined "+kind, uint32(amount), lc.ledger.Amount(k)+lc.storage.Amount(k))
}

func (lc *ledgerContext) theDeductionShouldBe(outcome string) error {
	want := outcome == "succeed"
	if lc.deducted != want {
		return fmt.Errorf("expected deduction to %s", outcome)
	}
	return nil
}

func (lc *ledgerContext) theDeductionShouldHaveEmittedChanges(n int) error {
	if lc.changes != n {
		return fmt.Errorf("expected %d change events, got %d", n, lc.changes)
	}
	return nil
}

// InitializeLedgerScenario registers the ledger and storage step definitions
func InitializeLedgerScenario(ctx *godog.ScenarioContext) {
	lc := &ledgerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		lc.reset()
		return ctx, nil
	})

	ctx.Step(`^a resource catalog:$`, lc.aResourceCatalog)
	ctx.Step(`^an empty ledger$`, lc.anEmptyLedger)
	ctx.Step(`^an empty carried ledger with capacity (\d+)$`, lc.anEmptyCarriedLedgerWithCapacity)
	ctx.Step(`^a storage with capacity:$`, lc.aStorageWithCapacity)
	ctx.Step(`^the storage already holds (\d+) (\w+)$`, lc.theStorageAlreadyHolds)

	ctx.Step(`^I add (\d+) (\w+) to the ledger$`, lc.iAddToTheLedger)
	ctx.Step(`^I remove (\d+) (\w+) from the ledger$`, lc.iRemoveFromTheLedger)
	ctx.Step(`^I add (\d+) (\w+) to the storage$`, lc.iAddToTheStorage)
	ctx.Step(`^I transfer (\d+) (\w+) from the ledger into the storage$`, lc.iTransferIntoTheStorage)
	ctx.Step(`^I deduct from the ledger:$`, lc.iDeductFromTheLedger)

	ctx.Step(`^the last mutation should have applied (\d+)$`, lc.theLastMutationShouldHaveApplied)
	ctx.Step(`^the ledger should hold (\d+) units in total$`, lc.theLedgerShouldHoldUnitsInTotal)
	ctx.Step(`^the ledger should hold (\d+) (\w+)$`, lc.theLedgerShouldHold)
	ctx.Step(`^the ledger should be empty$`, lc.theLedgerShouldBeEmpty)
	ctx.Step(`^the storage should hold (\d+) (\w+)$`, lc.theStorageShouldHold)
	ctx.Step(`^(\d+) (\w+) should exist across the ledger and the storage$`, lc.shouldExistAcrossBoth)
	ctx.Step(`^the deduction should (succeed|be refused)$`, lc.theDeductionShouldBe)
	ctx.Step(`^the deduction should have emitted (\d+) changes$`, lc.theDeductionShouldHaveEmittedChanges)
}
