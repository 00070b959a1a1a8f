package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// PlaceStructureCommand adds a building to the map
type PlaceStructureCommand struct {
	Kind     string
	Key      string
	X        int
	Y        int
	Width    int
	Height   int
	Capacity map[string]uint32
	Initial  map[string]uint32
}

// PlaceStructureResponse echoes the placed structure
type PlaceStructureResponse struct {
	Structure dtos.StructureDTO
}

// PlaceStructureHandler handles PlaceStructureCommand
type PlaceStructureHandler struct {
	engine *simulation.Engine
}

// NewPlaceStructureHandler creates a new PlaceStructureHandler
func NewPlaceStructureHandler(engine *simulation.Engine) *PlaceStructureHandler {
	return &PlaceStructureHandler{engine: engine}
}

// Handle executes the PlaceStructure command
func (h *PlaceStructureHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PlaceStructureCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlaceStructureCommand")
	}

	var placed dtos.StructureDTO
	err := h.engine.Exec(ctx, func() error {
		handle, err := h.engine.World().PlaceStructure(world.StructureSpec{
			Kind:     world.StructureKind(cmd.Kind),
			Key:      cmd.Key,
			Position: grid.Point{X: cmd.X, Y: cmd.Y},
			Width:    cmd.Width,
			Height:   cmd.Height,
			Capacity: dtos.Kinds(cmd.Capacity),
			Initial:  dtos.Kinds(cmd.Initial),
		})
		if err != nil {
			return err
		}
		st, _ := h.engine.World().Structure(handle)
		placed = dtos.NewStructureDTO(st, "")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place structure: %w", err)
	}

	common.LoggerFromContext(ctx).Info("structure placed", "key", cmd.Key, "kind", cmd.Kind)
	return &PlaceStructureResponse{Structure: placed}, nil
}

// RemoveStructureCommand deletes a building and releases its assignment
type RemoveStructureCommand struct {
	Key string
}

// RemoveStructureResponse confirms the removal
type RemoveStructureResponse struct {
	Key string
}

// RemoveStructureHandler handles RemoveStructureCommand
type RemoveStructureHandler struct {
	engine *simulation.Engine
}

// NewRemoveStructureHandler creates a new RemoveStructureHandler
func NewRemoveStructureHandler(engine *simulation.Engine) *RemoveStructureHandler {
	return &RemoveStructureHandler{engine: engine}
}

// Handle executes the RemoveStructure command
func (h *RemoveStructureHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RemoveStructureCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RemoveStructureCommand")
	}

	err := h.engine.Exec(ctx, func() error {
		return h.engine.RemoveStructure(cmd.Key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove structure: %w", err)
	}
	return &RemoveStructureResponse{Key: cmd.Key}, nil
}
