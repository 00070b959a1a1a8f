package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// RemoveWorkerCommand disposes a worker
type RemoveWorkerCommand struct {
	WorkerID string
}

// RemoveWorkerHandler handles RemoveWorkerCommand
type RemoveWorkerHandler struct {
	engine *simulation.Engine
}

// NewRemoveWorkerHandler creates a new RemoveWorkerHandler
func NewRemoveWorkerHandler(engine *simulation.Engine) *RemoveWorkerHandler {
	return &RemoveWorkerHandler{engine: engine}
}

// Handle executes the RemoveWorker command
func (h *RemoveWorkerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RemoveWorkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RemoveWorkerCommand")
	}

	err := h.engine.Exec(ctx, func() error {
		if !h.engine.Directory().Remove(cmd.WorkerID) {
			return shared.NewNotFoundError("worker", cmd.WorkerID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove worker: %w", err)
	}
	return &WorkerAck{WorkerID: cmd.WorkerID}, nil
}

// WorkerAck is the response of commands that only touch one worker
type WorkerAck struct {
	WorkerID string
}
