package assignment

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// Status represents the state of a worker assignment
type Status string

const (
	StatusActive   Status = "active"
	StatusReleased Status = "released"
)

// Assignment binds one worker to one structure. Deposit selection prefers the
// bound structure while it can accept what the worker carries.
type Assignment struct {
	workerID      string
	structureKey  string
	status        Status
	assignedAt    time.Time
	releasedAt    *time.Time
	releaseReason *string
	clock         shared.Clock
}

// NewAssignment creates an active assignment
func NewAssignment(workerID, structureKey string, clock shared.Clock) *Assignment {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Assignment{
		workerID:     workerID,
		structureKey: structureKey,
		status:       StatusActive,
		assignedAt:   clock.Now(),
		clock:        clock,
	}
}

func (a *Assignment) WorkerID() string       { return a.workerID }
func (a *Assignment) StructureKey() string   { return a.structureKey }
func (a *Assignment) Status() Status         { return a.status }
func (a *Assignment) AssignedAt() time.Time  { return a.assignedAt }
func (a *Assignment) ReleasedAt() *time.Time { return a.releasedAt }
func (a *Assignment) ReleaseReason() *string { return a.releaseReason }
func (a *Assignment) IsActive() bool         { return a.status == StatusActive }

// Release marks the assignment as released with a reason
func (a *Assignment) Release(reason string) error {
	if a.status == StatusReleased {
		return fmt.Errorf("assignment already released")
	}
	now := a.clock.Now()
	a.status = StatusReleased
	a.releasedAt = &now
	a.releaseReason = &reason
	return nil
}

func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment[worker=%s, structure=%s, status=%s]", a.workerID, a.structureKey, a.status)
}

// Registry is the worker↔structure table. It is passed explicitly to the
// target selector and the worker directory; there is no package-level
// instance.
//
// Invariants:
// - A worker has at most one active assignment
// - A structure has at most one active assignment
type Registry struct {
	mu          sync.RWMutex
	byWorker    map[string]*Assignment
	byStructure map[string]string // structure key -> worker id
	clock       shared.Clock
}

// NewRegistry creates an empty registry
func NewRegistry(clock shared.Clock) *Registry {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Registry{
		byWorker:    make(map[string]*Assignment),
		byStructure: make(map[string]string),
		clock:       clock,
	}
}

// Assign binds workerID to structureKey. Fails if either side is already
// bound, including to each other.
func (r *Registry) Assign(workerID, structureKey string) (*Assignment, error) {
	if workerID == "" || structureKey == "" {
		return nil, shared.NewValidationError("assignment", "worker id and structure key are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byWorker[workerID]; ok && existing.IsActive() {
		return nil, shared.NewWorkerAlreadyAssignedError(workerID, existing.structureKey)
	}
	if holder, ok := r.byStructure[structureKey]; ok {
		return nil, shared.NewStructureAlreadyAssignedError(structureKey, holder)
	}

	a := NewAssignment(workerID, structureKey, r.clock)
	r.byWorker[workerID] = a
	r.byStructure[structureKey] = workerID
	return a, nil
}

// StructureFor returns the structure bound to workerID
func (r *Registry) StructureFor(workerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byWorker[workerID]
	if !ok || !a.IsActive() {
		return "", false
	}
	return a.structureKey, true
}

// WorkerFor returns the worker bound to structureKey
func (r *Registry) WorkerFor(structureKey string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byStructure[structureKey]
	return id, ok
}

// Release frees the worker's assignment
func (r *Registry) Release(workerID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byWorker[workerID]
	if !ok || !a.IsActive() {
		return shared.NewNotAssignedError(workerID)
	}
	return r.releaseUnsafe(a, reason)
}

// ReleaseStructure frees whichever worker is bound to structureKey.
// Returns false if the structure was unbound.
func (r *Registry) ReleaseStructure(structureKey, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	workerID, ok := r.byStructure[structureKey]
	if !ok {
		return false
	}
	return r.releaseUnsafe(r.byWorker[workerID], reason) == nil
}

// CleanOrphaned releases assignments whose worker or structure no longer
// exists and returns how many were released.
func (r *Registry) CleanOrphaned(workerExists, structureExists func(string) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cleaned := 0
	for _, id := range r.sortedWorkersUnsafe() {
		a := r.byWorker[id]
		if !a.IsActive() {
			continue
		}
		if !workerExists(a.workerID) || !structureExists(a.structureKey) {
			if err := r.releaseUnsafe(a, "orphaned_cleanup"); err == nil {
				cleaned++
			}
		}
	}
	return cleaned
}

// Active returns every active assignment ordered by worker id
func (r *Registry) Active() []*Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Assignment
	for _, id := range r.sortedWorkersUnsafe() {
		if a := r.byWorker[id]; a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of active assignments
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byStructure)
}

func (r *Registry) releaseUnsafe(a *Assignment, reason string) error {
	if err := a.Release(reason); err != nil {
		return err
	}
	delete(r.byStructure, a.structureKey)
	delete(r.byWorker, a.workerID)
	return nil
}

func (r *Registry) sortedWorkersUnsafe() []string {
	ids := make([]string, 0, len(r.byWorker))
	for id := range r.byWorker {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
