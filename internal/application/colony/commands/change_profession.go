package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// ChangeProfessionCommand converts a worker to another profession
type ChangeProfessionCommand struct {
	WorkerID   string
	Profession string
}

// ChangeProfessionHandler handles ChangeProfessionCommand
type ChangeProfessionHandler struct {
	engine *simulation.Engine
}

// NewChangeProfessionHandler creates a new ChangeProfessionHandler
func NewChangeProfessionHandler(engine *simulation.Engine) *ChangeProfessionHandler {
	return &ChangeProfessionHandler{engine: engine}
}

// Handle executes the ChangeProfession command
func (h *ChangeProfessionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ChangeProfessionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ChangeProfessionCommand")
	}
	if cmd.Profession == "" {
		return nil, shared.NewValidationError("profession", "profession is required")
	}

	err := h.engine.Exec(ctx, func() error {
		return h.engine.Directory().ChangeProfession(cmd.WorkerID, cmd.Profession)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to change profession: %w", err)
	}

	common.LoggerFromContext(ctx).Info("profession changed", "worker", cmd.WorkerID, "profession", cmd.Profession)
	return &WorkerAck{WorkerID: cmd.WorkerID}, nil
}
