package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// SpawnWorkerCommand creates a worker, optionally bound to a structure
type SpawnWorkerCommand struct {
	Profession string
	X          int
	Y          int
	AssignTo   string // optional structure key
}

// SpawnWorkerResponse carries the new worker's ID
type SpawnWorkerResponse struct {
	WorkerID string
}

// SpawnWorkerHandler handles SpawnWorkerCommand
type SpawnWorkerHandler struct {
	engine *simulation.Engine
}

// NewSpawnWorkerHandler creates a new SpawnWorkerHandler
func NewSpawnWorkerHandler(engine *simulation.Engine) *SpawnWorkerHandler {
	return &SpawnWorkerHandler{engine: engine}
}

// Handle executes the SpawnWorker command
func (h *SpawnWorkerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SpawnWorkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SpawnWorkerCommand")
	}
	if cmd.Profession == "" {
		return nil, shared.NewValidationError("profession", "profession is required")
	}

	var workerID string
	err := h.engine.Exec(ctx, func() error {
		id, err := h.engine.SpawnWorker(cmd.Profession, grid.Point{X: cmd.X, Y: cmd.Y})
		if err != nil {
			return err
		}
		if cmd.AssignTo != "" {
			if err := h.engine.Assign(id, cmd.AssignTo); err != nil {
				// roll back so a failed bind leaves no stray worker
				h.engine.Directory().Remove(id)
				return err
			}
		}
		workerID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to spawn worker: %w", err)
	}

	common.LoggerFromContext(ctx).Info("worker spawned", "worker", workerID, "profession", cmd.Profession)
	return &SpawnWorkerResponse{WorkerID: workerID}, nil
}
