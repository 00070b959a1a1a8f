package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/events"
)

// SaveStateCommand persists every ledger and flushes the resource journal
type SaveStateCommand struct{}

// SaveStateResponse reports what was written
type SaveStateResponse struct {
	Ledgers        int
	JournalEntries int
}

// SaveStateHandler handles SaveStateCommand
type SaveStateHandler struct {
	engine  *simulation.Engine
	repo    common.LedgerSnapshotRepository
	journal *simulation.Journal
}

// NewSaveStateHandler creates a new SaveStateHandler; journal may be nil
func NewSaveStateHandler(engine *simulation.Engine, repo common.LedgerSnapshotRepository, journal *simulation.Journal) *SaveStateHandler {
	return &SaveStateHandler{engine: engine, repo: repo, journal: journal}
}

// Handle executes the SaveState command
func (h *SaveStateHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*SaveStateCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *SaveStateCommand")
	}

	var snapshots []common.LedgerSnapshot
	if err := h.engine.Exec(ctx, func() error {
		snapshots = h.engine.Snapshots()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to snapshot ledgers: %w", err)
	}

	// storage happens off the loop so a slow database never stalls ticks
	for _, snap := range snapshots {
		if err := h.repo.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to save ledger %s: %w", ownerLabel(snap.Owner), err)
		}
	}

	flushed := 0
	if h.journal != nil {
		n, err := h.journal.Flush(ctx)
		if err != nil {
			return nil, err
		}
		flushed = n
	}

	common.LoggerFromContext(ctx).Info("colony state saved", "ledgers", len(snapshots), "journal", flushed)
	return &SaveStateResponse{Ledgers: len(snapshots), JournalEntries: flushed}, nil
}

// RestoreStateCommand loads saved ledgers into live structures and workers
type RestoreStateCommand struct{}

// RestoreStateResponse reports how many ledgers matched a live owner
type RestoreStateResponse struct {
	Offered  int
	Restored int
}

// RestoreStateHandler handles RestoreStateCommand
type RestoreStateHandler struct {
	engine *simulation.Engine
	repo   common.LedgerSnapshotRepository
}

// NewRestoreStateHandler creates a new RestoreStateHandler
func NewRestoreStateHandler(engine *simulation.Engine, repo common.LedgerSnapshotRepository) *RestoreStateHandler {
	return &RestoreStateHandler{engine: engine, repo: repo}
}

// Handle executes the RestoreState command
func (h *RestoreStateHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*RestoreStateCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *RestoreStateCommand")
	}

	owners, err := h.repo.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved ledgers: %w", err)
	}
	snapshots := make([]common.LedgerSnapshot, 0, len(owners))
	for _, owner := range owners {
		snap, found, err := h.repo.Load(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger %s: %w", ownerLabel(owner), err)
		}
		if found {
			snapshots = append(snapshots, snap)
		}
	}

	restored := 0
	if err := h.engine.Exec(ctx, func() error {
		restored = h.engine.Restore(snapshots)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to restore ledgers: %w", err)
	}
	return &RestoreStateResponse{Offered: len(snapshots), Restored: restored}, nil
}

func ownerLabel(o events.Owner) string {
	return fmt.Sprintf("%s/%s", o.Type, o.Key)
}
