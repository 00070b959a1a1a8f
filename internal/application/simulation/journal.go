package simulation

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// Journal buffers ResourceChanged events and writes them out in batches.
// Subscribe it to the bus; Flush from a timer or at shutdown.
type Journal struct {
	mu      sync.Mutex
	pending []common.JournalEntry
	repo    common.ResourceJournalRepository
	clock   shared.Clock
	limit   int
	dropped int
}

// NewJournal creates a journal that keeps at most limit unflushed entries;
// older entries are dropped first when the buffer is full
func NewJournal(repo common.ResourceJournalRepository, clock shared.Clock, limit int) *Journal {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if limit <= 0 {
		limit = 10000
	}
	return &Journal{repo: repo, clock: clock, limit: limit}
}

// Handle is an events.Handler
func (j *Journal) Handle(e events.Event) {
	rc, ok := e.(events.ResourceChanged)
	if !ok {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.pending) >= j.limit {
		j.pending = j.pending[1:]
		j.dropped++
	}
	j.pending = append(j.pending, common.JournalEntry{
		Owner:    rc.Owner,
		Kind:     rc.Kind,
		Previous: rc.Previous,
		New:      rc.New,
		Delta:    rc.Delta,
		At:       j.clock.Now(),
	})
}

// Pending returns the number of buffered entries
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Dropped returns how many entries were discarded because the buffer was full
func (j *Journal) Dropped() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Flush writes buffered entries. On failure the batch is put back in front.
func (j *Journal) Flush(ctx context.Context) (int, error) {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}
	if err := j.repo.Append(ctx, batch); err != nil {
		j.mu.Lock()
		j.pending = append(batch, j.pending...)
		j.mu.Unlock()
		return 0, fmt.Errorf("failed to flush resource journal: %w", err)
	}
	return len(batch), nil
}
