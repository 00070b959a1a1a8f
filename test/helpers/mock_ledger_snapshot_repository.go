package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
)

// MockLedgerSnapshotRepository is an in-memory LedgerSnapshotRepository
type MockLedgerSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[events.Owner]common.LedgerSnapshot
	SaveErr   error
}

// NewMockLedgerSnapshotRepository creates an empty repository
func NewMockLedgerSnapshotRepository() *MockLedgerSnapshotRepository {
	return &MockLedgerSnapshotRepository{
		snapshots: make(map[events.Owner]common.LedgerSnapshot),
	}
}

// Save replaces the snapshot of its owner
func (m *MockLedgerSnapshotRepository) Save(ctx context.Context, snapshot common.LedgerSnapshot) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Owner] = snapshot
	return nil
}

// Load returns the owner's snapshot
func (m *MockLedgerSnapshotRepository) Load(ctx context.Context, owner events.Owner) (common.LedgerSnapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[owner]
	return snap, ok, nil
}

// ListOwners returns owners sorted by type then key
func (m *MockLedgerSnapshotRepository) ListOwners(ctx context.Context) ([]events.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]events.Owner, 0, len(m.snapshots))
	for owner := range m.snapshots {
		out = append(out, owner)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}
