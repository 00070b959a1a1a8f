package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
)

// StatusQuery asks for the colony summary
type StatusQuery struct{}

// StatusResponse wraps the summary
type StatusResponse struct {
	Status dtos.StatusDTO
}

// StatusHandler handles StatusQuery
type StatusHandler struct {
	engine *simulation.Engine
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(engine *simulation.Engine) *StatusHandler {
	return &StatusHandler{engine: engine}
}

// Handle executes the Status query
func (h *StatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*StatusQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *StatusQuery")
	}

	var st simulation.Status
	if err := h.engine.Exec(ctx, func() error {
		st = h.engine.Status()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	return &StatusResponse{Status: dtos.StatusDTO{
		Lifecycle:   string(st.Lifecycle),
		Uptime:      st.Uptime,
		Ticks:       st.Ticks,
		Workers:     st.Workers,
		Structures:  st.Structures,
		GridVersion: st.GridVersion,
		Assignments: st.Assignments,
		PendingPath: st.PendingPath,
		Timers:      st.Timers,
		Stock:       dtos.Amounts(st.Stock),
	}}, nil
}
