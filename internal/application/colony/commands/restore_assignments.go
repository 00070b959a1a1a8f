package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
)

// RestoreAssignmentsCommand rebinds persisted assignments after a restart.
// Records whose worker or structure no longer exists are released.
type RestoreAssignmentsCommand struct{}

// RestoreAssignmentsResponse reports the outcome per record
type RestoreAssignmentsResponse struct {
	Restored int
	Released int
}

// RestoreAssignmentsHandler handles RestoreAssignmentsCommand
type RestoreAssignmentsHandler struct {
	engine *simulation.Engine
	repo   common.AssignmentRepository
}

// NewRestoreAssignmentsHandler creates a new RestoreAssignmentsHandler
func NewRestoreAssignmentsHandler(engine *simulation.Engine, repo common.AssignmentRepository) *RestoreAssignmentsHandler {
	return &RestoreAssignmentsHandler{engine: engine, repo: repo}
}

// Handle executes the RestoreAssignments command
func (h *RestoreAssignmentsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*RestoreAssignmentsCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *RestoreAssignmentsCommand")
	}

	records, err := h.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	var stale []common.AssignmentRecord
	restored := 0
	if err := h.engine.Exec(ctx, func() error {
		for _, r := range records {
			if current, ok := h.engine.Assignments().StructureFor(r.WorkerID); ok && current == r.StructureKey {
				restored++
				continue
			}
			if err := h.engine.Assign(r.WorkerID, r.StructureKey); err != nil {
				stale = append(stale, r)
				continue
			}
			restored++
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to restore assignments: %w", err)
	}

	logger := common.LoggerFromContext(ctx)
	for _, r := range stale {
		if err := h.repo.Release(ctx, r.WorkerID, "stale"); err != nil {
			logger.Warn("failed to release stale assignment", "worker", r.WorkerID, "error", err)
		}
	}
	logger.Info("assignments restored", "restored", restored, "released", len(stale))
	return &RestoreAssignmentsResponse{Restored: restored, Released: len(stale)}, nil
}
