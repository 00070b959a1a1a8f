package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// ListStructuresQuery lists buildings, optionally filtered by kind
type ListStructuresQuery struct {
	Kind string
}

// ListStructuresResponse contains structures in handle order
type ListStructuresResponse struct {
	Structures []dtos.StructureDTO
}

// ListStructuresHandler handles ListStructuresQuery
type ListStructuresHandler struct {
	engine *simulation.Engine
}

// NewListStructuresHandler creates a new ListStructuresHandler
func NewListStructuresHandler(engine *simulation.Engine) *ListStructuresHandler {
	return &ListStructuresHandler{engine: engine}
}

// Handle executes the ListStructures query
func (h *ListStructuresHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListStructuresQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListStructuresQuery")
	}

	var out []dtos.StructureDTO
	err := h.engine.Exec(ctx, func() error {
		refs := h.engine.World().AllStructures()
		if query.Kind != "" {
			refs = h.engine.World().StructuresOfType(world.StructureKind(query.Kind))
		}
		out = make([]dtos.StructureDTO, 0, len(refs))
		for _, ref := range refs {
			worker, _ := h.engine.Assignments().WorkerFor(ref.Key())
			out = append(out, dtos.NewStructureDTO(ref.Structure, worker))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list structures: %w", err)
	}
	return &ListStructuresResponse{Structures: out}, nil
}

// StructureResourcesQuery reads one structure's storage
type StructureResourcesQuery struct {
	Key string
}

// StructureResourcesResponse carries stored amounts and capacities
type StructureResourcesResponse struct {
	Structure dtos.StructureDTO
}

// StructureResourcesHandler handles StructureResourcesQuery
type StructureResourcesHandler struct {
	engine *simulation.Engine
}

// NewStructureResourcesHandler creates a new StructureResourcesHandler
func NewStructureResourcesHandler(engine *simulation.Engine) *StructureResourcesHandler {
	return &StructureResourcesHandler{engine: engine}
}

// Handle executes the StructureResources query
func (h *StructureResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*StructureResourcesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StructureResourcesQuery")
	}

	var dto dtos.StructureDTO
	err := h.engine.Exec(ctx, func() error {
		_, st, found := h.engine.World().StructureByKey(query.Key)
		if !found {
			return shared.NewNotFoundError("structure", query.Key)
		}
		worker, _ := h.engine.Assignments().WorkerFor(query.Key)
		dto = dtos.NewStructureDTO(st, worker)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &StructureResourcesResponse{Structure: dto}, nil
}
