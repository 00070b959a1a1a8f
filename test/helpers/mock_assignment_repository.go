package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/colony-go/internal/application/common"
)

// MockAssignmentRepository is an in-memory AssignmentRepository
type MockAssignmentRepository struct {
	mu       sync.RWMutex
	active   map[string]common.AssignmentRecord // workerID -> record
	Released map[string]string                  // workerID -> reason
}

// NewMockAssignmentRepository creates an empty repository
func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{
		active:   make(map[string]common.AssignmentRecord),
		Released: make(map[string]string),
	}
}

// Upsert stores the binding
func (m *MockAssignmentRepository) Upsert(ctx context.Context, record common.AssignmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[record.WorkerID] = record
	delete(m.Released, record.WorkerID)
	return nil
}

// Release drops the active binding
func (m *MockAssignmentRepository) Release(ctx context.Context, workerID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[workerID]; !ok {
		return fmt.Errorf("assignment not found: %s", workerID)
	}
	delete(m.active, workerID)
	m.Released[workerID] = reason
	return nil
}

// FindActive returns active bindings ordered by worker
func (m *MockAssignmentRepository) FindActive(ctx context.Context) ([]common.AssignmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]common.AssignmentRecord, 0, len(m.active))
	for _, r := range m.active {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out, nil
}
