package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
)

// ListWorkersQuery lists workers, optionally filtered by profession
type ListWorkersQuery struct {
	Profession string
}

// ListWorkersResponse contains workers in creation order
type ListWorkersResponse struct {
	Workers []dtos.WorkerDTO
}

// ListWorkersHandler handles ListWorkersQuery
type ListWorkersHandler struct {
	engine *simulation.Engine
}

// NewListWorkersHandler creates a new ListWorkersHandler
func NewListWorkersHandler(engine *simulation.Engine) *ListWorkersHandler {
	return &ListWorkersHandler{engine: engine}
}

// Handle executes the ListWorkers query
func (h *ListWorkersHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListWorkersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListWorkersQuery")
	}

	var out []dtos.WorkerDTO
	err := h.engine.Exec(ctx, func() error {
		agents := h.engine.Directory().All()
		if query.Profession != "" {
			agents = h.engine.Directory().ByType(query.Profession)
		}
		out = make([]dtos.WorkerDTO, 0, len(agents))
		for _, a := range agents {
			out = append(out, h.toDTO(a))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return &ListWorkersResponse{Workers: out}, nil
}

func (h *ListWorkersHandler) toDTO(a *worker.Agent) dtos.WorkerDTO {
	key, _ := h.engine.Assignments().StructureFor(a.ID())
	return dtos.NewWorkerDTO(a.Snapshot(), key)
}

// GetWorkerQuery fetches one worker
type GetWorkerQuery struct {
	WorkerID string
}

// GetWorkerResponse wraps the worker
type GetWorkerResponse struct {
	Worker dtos.WorkerDTO
}

// GetWorkerHandler handles GetWorkerQuery
type GetWorkerHandler struct {
	engine *simulation.Engine
}

// NewGetWorkerHandler creates a new GetWorkerHandler
func NewGetWorkerHandler(engine *simulation.Engine) *GetWorkerHandler {
	return &GetWorkerHandler{engine: engine}
}

// Handle executes the GetWorker query
func (h *GetWorkerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetWorkerQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetWorkerQuery")
	}

	var dto dtos.WorkerDTO
	err := h.engine.Exec(ctx, func() error {
		a, found := h.engine.Directory().Get(query.WorkerID)
		if !found {
			return shared.NewNotFoundError("worker", query.WorkerID)
		}
		key, _ := h.engine.Assignments().StructureFor(a.ID())
		dto = dtos.NewWorkerDTO(a.Snapshot(), key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &GetWorkerResponse{Worker: dto}, nil
}
