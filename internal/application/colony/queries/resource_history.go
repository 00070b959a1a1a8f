package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// ResourceHistoryQuery reads the persisted journal of one ledger
type ResourceHistoryQuery struct {
	OwnerType string
	OwnerKey  string
	Limit     int
}

// ResourceHistoryResponse lists journal entries, newest first
type ResourceHistoryResponse struct {
	Entries []common.JournalEntry
}

// ResourceHistoryHandler handles ResourceHistoryQuery
type ResourceHistoryHandler struct {
	repo common.ResourceJournalRepository
}

// NewResourceHistoryHandler creates a new ResourceHistoryHandler
func NewResourceHistoryHandler(repo common.ResourceJournalRepository) *ResourceHistoryHandler {
	return &ResourceHistoryHandler{repo: repo}
}

// Handle executes the ResourceHistory query
func (h *ResourceHistoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ResourceHistoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResourceHistoryQuery")
	}

	owner := events.Owner{Type: events.OwnerType(query.OwnerType), Key: query.OwnerKey}
	if owner.Type != events.OwnerWorker && owner.Type != events.OwnerStructure {
		return nil, shared.NewValidationError("owner_type", "must be worker or structure")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	entries, err := h.repo.FindByOwner(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource history: %w", err)
	}
	return &ResourceHistoryResponse{Entries: entries}, nil
}
