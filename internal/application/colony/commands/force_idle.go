package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// ForceIdleCommand cancels whatever a worker is doing
type ForceIdleCommand struct {
	WorkerID string
}

// ForceIdleHandler handles ForceIdleCommand
type ForceIdleHandler struct {
	engine *simulation.Engine
}

// NewForceIdleHandler creates a new ForceIdleHandler
func NewForceIdleHandler(engine *simulation.Engine) *ForceIdleHandler {
	return &ForceIdleHandler{engine: engine}
}

// Handle executes the ForceIdle command
func (h *ForceIdleHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ForceIdleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ForceIdleCommand")
	}

	err := h.engine.Exec(ctx, func() error {
		agent, found := h.engine.Directory().Get(cmd.WorkerID)
		if !found {
			return shared.NewNotFoundError("worker", cmd.WorkerID)
		}
		agent.ForceIdle()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to idle worker: %w", err)
	}
	return &WorkerAck{WorkerID: cmd.WorkerID}, nil
}
