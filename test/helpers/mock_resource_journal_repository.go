package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
)

// MockResourceJournalRepository is an in-memory ResourceJournalRepository
type MockResourceJournalRepository struct {
	mu        sync.RWMutex
	entries   []common.JournalEntry
	AppendErr error
}

// NewMockResourceJournalRepository creates an empty journal
func NewMockResourceJournalRepository() *MockResourceJournalRepository {
	return &MockResourceJournalRepository{}
}

// Append stores entries in order
func (m *MockResourceJournalRepository) Append(ctx context.Context, entries []common.JournalEntry) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

// FindByOwner returns the newest entries for owner first
func (m *MockResourceJournalRepository) FindByOwner(ctx context.Context, owner events.Owner, limit int) ([]common.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []common.JournalEntry
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.entries[i].Owner == owner {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// All returns every stored entry in append order
func (m *MockResourceJournalRepository) All() []common.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]common.JournalEntry(nil), m.entries...)
}
