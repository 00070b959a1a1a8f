package directory

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/domain/assignment"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
	"github.com/andrescamacho/colony-go/pkg/utils"
)

// LivenessProbe reports whether whatever backs an agent outside the core
// (a sprite, a network session) still exists
type LivenessProbe func(agentID string) bool

// Option customizes a Directory
type Option func(*Directory)

// WithLivenessProbe enables housekeeping against probe
func WithLivenessProbe(probe LivenessProbe) Option {
	return func(d *Directory) {
		d.alive = probe
	}
}

// WithIDGenerator overrides how agent IDs are minted
func WithIDGenerator(gen func(profession string) string) Option {
	return func(d *Directory) {
		if gen != nil {
			d.newID = gen
		}
	}
}

// WithLogger sets the directory logger
func WithLogger(logger *log.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Directory owns every live worker agent.
//
// Creation starts the agent's tick; removal disposes it and releases its
// structure assignment. Iteration is always in creation order so that agents
// tick, list and serialize deterministically.
type Directory struct {
	professions *profession.Registry
	env         *worker.Env
	assignments *assignment.Registry
	bus         events.Publisher

	agents map[string]*worker.Agent
	order  []string

	alive  LivenessProbe
	newID  func(profession string) string
	logger *log.Logger
}

// New creates a directory. assignments may be nil.
func New(professions *profession.Registry, env *worker.Env, assignments *assignment.Registry, opts ...Option) *Directory {
	if professions == nil || env == nil {
		panic("directory: professions and env are required")
	}
	d := &Directory{
		professions: professions,
		env:         env,
		assignments: assignments,
		bus:         env.Bus,
		agents:      make(map[string]*worker.Agent),
		newID:       utils.GenerateWorkerID,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.bus == nil {
		d.bus = events.PublisherFunc(func(events.Event) {})
	}
	return d
}

// Create spawns a worker of the given profession at pos and returns its ID
func (d *Directory) Create(kind string, pos grid.Point) (string, error) {
	return d.create(d.newID(kind), kind, pos)
}

// CreateWithID spawns a worker under a caller-chosen ID, as when restoring a
// saved colony
func (d *Directory) CreateWithID(id, kind string, pos grid.Point) error {
	if id == "" {
		return shared.NewValidationError("id", "worker id cannot be empty")
	}
	if _, exists := d.agents[id]; exists {
		return shared.NewValidationError("id", fmt.Sprintf("worker %s already exists", id))
	}
	_, err := d.create(id, kind, pos)
	return err
}

func (d *Directory) create(id, kind string, pos grid.Point) (string, error) {
	cfg, ok := d.professions.Get(kind)
	if !ok {
		return "", shared.NewNotFoundError("profession", kind)
	}

	agent := worker.NewAgent(id, cfg, pos, d.env)
	d.agents[id] = agent
	d.order = append(d.order, id)
	agent.Start()

	d.bus.Publish(events.WorkerSpawned{AgentID: id, Profession: kind, Position: pos})
	d.logger.Info("worker created", "worker", id, "profession", kind, "position", pos)
	return id, nil
}

// Remove disposes the worker and drops it. Returns false for unknown IDs.
func (d *Directory) Remove(id string) bool {
	return d.remove(id, "removed")
}

func (d *Directory) remove(id, reason string) bool {
	agent, ok := d.agents[id]
	if !ok {
		return false
	}
	agent.Dispose()
	delete(d.agents, id)
	for i, o := range d.order {
		if o == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}

	if d.assignments != nil {
		var notAssigned *shared.NotAssignedError
		if err := d.assignments.Release(id, reason); err != nil && !errors.As(err, &notAssigned) {
			d.logger.Warn("failed to release assignment", "worker", id, "error", err)
		}
	}

	d.bus.Publish(events.WorkerRemoved{AgentID: id, Reason: reason})
	d.logger.Info("worker removed", "worker", id, "reason", reason)
	return true
}

// Get returns the agent with id
func (d *Directory) Get(id string) (*worker.Agent, bool) {
	a, ok := d.agents[id]
	return a, ok
}

// Has reports whether id is a live worker
func (d *Directory) Has(id string) bool {
	_, ok := d.agents[id]
	return ok
}

// All returns every agent in creation order
func (d *Directory) All() []*worker.Agent {
	out := make([]*worker.Agent, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.agents[id])
	}
	return out
}

// ByType returns agents whose current profession is kind, in creation order
func (d *Directory) ByType(kind string) []*worker.Agent {
	var out []*worker.Agent
	for _, id := range d.order {
		if a := d.agents[id]; a.Profession() == kind {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of live workers
func (d *Directory) Len() int {
	return len(d.agents)
}

// ChangeProfession swaps a worker's config; in-flight work is cancelled
func (d *Directory) ChangeProfession(id, kind string) error {
	agent, ok := d.agents[id]
	if !ok {
		return shared.NewNotFoundError("worker", id)
	}
	cfg, ok := d.professions.Get(kind)
	if !ok {
		return shared.NewNotFoundError("profession", kind)
	}
	agent.SetConfig(cfg)
	return nil
}

// Housekeeping drops agents whose liveness probe reports them gone and
// returns how many were removed. Without a probe it does nothing.
func (d *Directory) Housekeeping() int {
	if d.alive == nil {
		return 0
	}
	var gone []string
	for _, id := range d.order {
		if !d.alive(id) {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		d.remove(id, "orphaned")
	}
	if len(gone) > 0 {
		d.logger.Warn("housekeeping removed orphaned workers", "count", len(gone))
	}
	return len(gone)
}

// Clear disposes every agent
func (d *Directory) Clear() {
	for _, id := range append([]string(nil), d.order...) {
		d.remove(id, "shutdown")
	}
}
