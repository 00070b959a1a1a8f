package pathfinding

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
)

// QueryID identifies a queued path request
type QueryID uint64

// Callback receives the computed path, or nil when there is no route.
type Callback func(path []grid.Point)

// GridProvider hands out the latest walkability snapshot
type GridProvider interface {
	CurrentGrid() *grid.Grid
}

// GridProviderFunc adapts a function to GridProvider
type GridProviderFunc func() *grid.Grid

func (f GridProviderFunc) CurrentGrid() *grid.Grid { return f() }

// OutcomeHook observes every finished query
type OutcomeHook func(found bool, iterations int)

type query struct {
	id         QueryID
	search     *search
	callback   Callback
	iterations int
}

// Service queues path requests and resolves them a batch at a time.
//
// Each request captures the grid current at request time, so a rebuild while
// a query is pending does not affect it. Calculate spends at most the
// configured number of node expansions per call and fires callbacks on the
// calling goroutine, in completion order. Not safe for concurrent use; it
// belongs to the simulation loop.
type Service struct {
	provider GridProvider
	budget   int
	queue    []*query
	nextID   QueryID
	hook     OutcomeHook
	logger   *log.Logger
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger
func WithServiceLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOutcomeHook registers an observer for finished queries
func WithOutcomeHook(hook OutcomeHook) ServiceOption {
	return func(s *Service) {
		s.hook = hook
	}
}

// NewService creates a path service. iterationsPerTick <= 0 means unlimited.
func NewService(provider GridProvider, iterationsPerTick int, opts ...ServiceOption) *Service {
	if provider == nil {
		panic("pathfinding: nil grid provider")
	}
	s := &Service{
		provider: provider,
		budget:   iterationsPerTick,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request queues a search from start to end against the current grid
func (s *Service) Request(start, end grid.Point, cb Callback) QueryID {
	s.nextID++
	q := &query{
		id:       s.nextID,
		search:   newSearch(s.provider.CurrentGrid(), start, end),
		callback: cb,
	}
	s.queue = append(s.queue, q)
	s.logger.Debug("path query queued", "id", q.id, "from", start, "to", end)
	return q.id
}

// Cancel drops a pending query; its callback never fires
func (s *Service) Cancel(id QueryID) bool {
	for i, q := range s.queue {
		if q.id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns the number of unresolved queries
func (s *Service) Pending() int {
	return len(s.queue)
}

// Calculate advances queued searches in FIFO order until the iteration budget
// is spent or the queue is empty. Callbacks may queue new requests; those are
// served by the same call if budget remains. Returns the iterations used.
func (s *Service) Calculate() int {
	used := 0
	for len(s.queue) > 0 {
		remaining := math.MaxInt32
		if s.budget > 0 {
			remaining = s.budget - used
			if remaining <= 0 {
				break
			}
		}

		q := s.queue[0]
		n := q.search.step(remaining)
		used += n
		q.iterations += n
		if !q.search.done {
			continue
		}

		s.queue = s.queue[1:]
		path := q.search.result
		if s.hook != nil {
			s.hook(path != nil, q.iterations)
		}
		s.logger.Debug("path query resolved", "id", q.id, "found", path != nil, "length", len(path), "iterations", q.iterations)
		if q.callback != nil {
			q.callback(path)
		}
	}
	return used
}

// FindPath searches synchronously on the current grid
func (s *Service) FindPath(start, end grid.Point) []grid.Point {
	return FindPath(s.provider.CurrentGrid(), start, end)
}

// NearestWalkable runs FindNearestWalkableTile on the current grid
func (s *Service) NearestWalkable(target grid.Point, maxRadius int) (grid.Point, bool) {
	return FindNearestWalkableTile(s.provider.CurrentGrid(), target, maxRadius)
}
