package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// ClearZoneCommand removes an obstruction zone, opening its tiles
type ClearZoneCommand struct {
	ZoneID string
}

// ClearZoneResponse reports the grid version after the rebuild
type ClearZoneResponse struct {
	ZoneID      string
	GridVersion uint64
}

// ClearZoneHandler handles ClearZoneCommand
type ClearZoneHandler struct {
	engine *simulation.Engine
}

// NewClearZoneHandler creates a new ClearZoneHandler
func NewClearZoneHandler(engine *simulation.Engine) *ClearZoneHandler {
	return &ClearZoneHandler{engine: engine}
}

// Handle executes the ClearZone command
func (h *ClearZoneHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ClearZoneCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ClearZoneCommand")
	}

	var version uint64
	err := h.engine.Exec(ctx, func() error {
		if !h.engine.World().ClearZone(cmd.ZoneID) {
			return shared.NewNotFoundError("zone", cmd.ZoneID)
		}
		version = h.engine.CurrentGrid().Version()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear zone: %w", err)
	}
	return &ClearZoneResponse{ZoneID: cmd.ZoneID, GridVersion: version}, nil
}

// RespawnHarvestablesCommand restores destroyed harvestables. An empty Kind
// respawns every kind.
type RespawnHarvestablesCommand struct {
	Kind string
}

// RespawnHarvestablesResponse reports how many came back
type RespawnHarvestablesResponse struct {
	Respawned int
}

// RespawnHarvestablesHandler handles RespawnHarvestablesCommand
type RespawnHarvestablesHandler struct {
	engine *simulation.Engine
}

// NewRespawnHarvestablesHandler creates a new RespawnHarvestablesHandler
func NewRespawnHarvestablesHandler(engine *simulation.Engine) *RespawnHarvestablesHandler {
	return &RespawnHarvestablesHandler{engine: engine}
}

// Handle executes the RespawnHarvestables command
func (h *RespawnHarvestablesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RespawnHarvestablesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RespawnHarvestablesCommand")
	}

	respawned := 0
	err := h.engine.Exec(ctx, func() error {
		refs := h.engine.World().AllHarvestables()
		if cmd.Kind != "" {
			refs = h.engine.World().EntitiesOfType(world.EntityKind(cmd.Kind))
		}
		for _, ref := range refs {
			if h.engine.World().Respawn(ref.Handle) {
				respawned++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to respawn harvestables: %w", err)
	}
	return &RespawnHarvestablesResponse{Respawned: respawned}, nil
}
