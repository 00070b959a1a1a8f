package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
)

// AssignWorkerCommand binds a worker to a structure
type AssignWorkerCommand struct {
	WorkerID     string
	StructureKey string
}

// AssignWorkerResponse echoes the binding
type AssignWorkerResponse struct {
	WorkerID     string
	StructureKey string
}

// AssignWorkerHandler handles AssignWorkerCommand. When a repository is
// configured the binding is also persisted so it survives restarts.
type AssignWorkerHandler struct {
	engine *simulation.Engine
	repo   common.AssignmentRepository
}

// NewAssignWorkerHandler creates a new AssignWorkerHandler; repo may be nil
func NewAssignWorkerHandler(engine *simulation.Engine, repo common.AssignmentRepository) *AssignWorkerHandler {
	return &AssignWorkerHandler{engine: engine, repo: repo}
}

// Handle executes the AssignWorker command
func (h *AssignWorkerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AssignWorkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignWorkerCommand")
	}

	var record common.AssignmentRecord
	err := h.engine.Exec(ctx, func() error {
		if err := h.engine.Assign(cmd.WorkerID, cmd.StructureKey); err != nil {
			return err
		}
		record = common.AssignmentRecord{
			WorkerID:     cmd.WorkerID,
			StructureKey: cmd.StructureKey,
			AssignedAt:   h.engine.Clock().Now(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign worker: %w", err)
	}

	if h.repo != nil {
		if err := h.repo.Upsert(ctx, record); err != nil {
			common.LoggerFromContext(ctx).Warn("failed to persist assignment", "worker", cmd.WorkerID, "error", err)
		}
	}
	return &AssignWorkerResponse{WorkerID: cmd.WorkerID, StructureKey: cmd.StructureKey}, nil
}

// UnassignWorkerCommand releases a worker's structure binding
type UnassignWorkerCommand struct {
	WorkerID string
	Reason   string
}

// UnassignWorkerHandler handles UnassignWorkerCommand
type UnassignWorkerHandler struct {
	engine *simulation.Engine
	repo   common.AssignmentRepository
}

// NewUnassignWorkerHandler creates a new UnassignWorkerHandler; repo may be nil
func NewUnassignWorkerHandler(engine *simulation.Engine, repo common.AssignmentRepository) *UnassignWorkerHandler {
	return &UnassignWorkerHandler{engine: engine, repo: repo}
}

// Handle executes the UnassignWorker command
func (h *UnassignWorkerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*UnassignWorkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UnassignWorkerCommand")
	}
	reason := cmd.Reason
	if reason == "" {
		reason = "unassigned"
	}

	err := h.engine.Exec(ctx, func() error {
		return h.engine.Assignments().Release(cmd.WorkerID, reason)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unassign worker: %w", err)
	}

	if h.repo != nil {
		if err := h.repo.Release(ctx, cmd.WorkerID, reason); err != nil {
			common.LoggerFromContext(ctx).Warn("failed to persist release", "worker", cmd.WorkerID, "error", err)
		}
	}
	return &WorkerAck{WorkerID: cmd.WorkerID}, nil
}
