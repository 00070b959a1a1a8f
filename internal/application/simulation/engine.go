package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/domain/assignment"
	"github.com/andrescamacho/colony-go/internal/domain/directory"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/pathfinding"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/targeting"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// ErrNotRunning is returned by Exec when the loop stops before taking the job
var ErrNotRunning = errors.New("simulation loop is not running")

// Options configures an Engine
type Options struct {
	Width  int
	Height int
	Seed   int64

	FrameInterval         time.Duration
	PathIterationsPerTick int
	HousekeepingInterval  time.Duration
	Worker                worker.Settings

	Liveness     directory.LivenessProbe
	PathOutcome  pathfinding.OutcomeHook
	TickObserver func(elapsed time.Duration)
}

// DefaultOptions returns options for a 64x64 map
func DefaultOptions() Options {
	return Options{
		Width:                 64,
		Height:                64,
		Seed:                  1,
		FrameInterval:         50 * time.Millisecond,
		PathIterationsPerTick: 2000,
		HousekeepingInterval:  5 * time.Second,
		Worker:                worker.DefaultSettings(),
	}
}

// Engine owns one colony and the single logical thread that advances it.
//
// Everything under the engine (scheduler, world, agents, path service) is
// touched only from the loop goroutine started by Run. Other goroutines post
// work through Exec. When the loop is not running, Exec runs the closure on
// the caller's goroutine, which is how tests and one-shot tools drive it.
type Engine struct {
	clock       shared.Clock
	sched       *shared.Scheduler
	bus         *events.Bus
	catalog     *resource.Catalog
	world       *world.World
	grid        atomic.Pointer[grid.Grid]
	gridVersion uint64
	paths       *pathfinding.Service
	selector    *targeting.Selector
	assignments *assignment.Registry
	professions *profession.Registry
	directory   *directory.Directory
	lifecycle   *shared.LifecycleStateMachine

	opts   Options
	inbox  chan func()
	runMu  sync.Mutex
	loop   atomic.Pointer[loopState]
	ticks  atomic.Uint64
	logger *log.Logger
}

type loopState struct {
	done chan struct{}
}

// NewEngine wires a colony. clock nil uses the real clock; logger nil discards.
func NewEngine(catalog *resource.Catalog, professions *profession.Registry, opts Options, clock shared.Clock, logger *log.Logger) *Engine {
	if catalog == nil || professions == nil {
		panic("simulation: catalog and professions are required")
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	defaults := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = defaults.Width, defaults.Height
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaults.FrameInterval
	}
	if opts.HousekeepingInterval <= 0 {
		opts.HousekeepingInterval = defaults.HousekeepingInterval
	}

	e := &Engine{
		clock:       clock,
		sched:       shared.NewScheduler(clock),
		bus:         events.NewBus(logger.WithPrefix("bus")),
		catalog:     catalog,
		professions: professions,
		assignments: assignment.NewRegistry(clock),
		lifecycle:   shared.NewLifecycleStateMachine(clock),
		opts:        opts,
		inbox:       make(chan func()),
		logger:      logger,
	}

	e.world = world.New(opts.Width, opts.Height, catalog, logger.WithPrefix("world"))
	e.world.OnObstaclesChanged(e.RebuildGrid)
	e.world.OnStorageChanged(func(key string, c ledger.Change) {
		e.bus.Publish(events.ResourceChanged{
			Owner:    events.Owner{Type: events.OwnerStructure, Key: key},
			Kind:     c.Kind,
			Previous: c.Previous,
			New:      c.New,
			Delta:    c.Delta,
		})
	})
	e.RebuildGrid("initial")

	pathOpts := []pathfinding.ServiceOption{pathfinding.WithServiceLogger(logger.WithPrefix("paths"))}
	if opts.PathOutcome != nil {
		pathOpts = append(pathOpts, pathfinding.WithOutcomeHook(opts.PathOutcome))
	}
	e.paths = pathfinding.NewService(pathfinding.GridProviderFunc(e.CurrentGrid), opts.PathIterationsPerTick, pathOpts...)
	e.selector = targeting.NewSelector(e.world, e.assignments)

	env := &worker.Env{
		Catalog:   catalog,
		World:     e.world,
		Selector:  e.selector,
		Paths:     e.paths,
		Scheduler: e.sched,
		Bus:       e.bus,
		Roll:      rand.New(rand.NewSource(opts.Seed)).Float64,
		Logger:    logger.WithPrefix("worker"),
		Settings:  opts.Worker,
	}
	dirOpts := []directory.Option{directory.WithLogger(logger.WithPrefix("directory"))}
	if opts.Liveness != nil {
		dirOpts = append(dirOpts, directory.WithLivenessProbe(opts.Liveness))
	}
	e.directory = directory.New(professions, env, e.assignments, dirOpts...)

	e.sched.Every(opts.HousekeepingInterval, e.housekeeping)
	return e
}

// Accessors. Only call these from the loop (inside Exec) once Run has started.

func (e *Engine) Clock() shared.Clock                      { return e.clock }
func (e *Engine) Scheduler() *shared.Scheduler             { return e.sched }
func (e *Engine) Bus() *events.Bus                         { return e.bus }
func (e *Engine) Catalog() *resource.Catalog               { return e.catalog }
func (e *Engine) World() *world.World                      { return e.world }
func (e *Engine) Paths() *pathfinding.Service              { return e.paths }
func (e *Engine) Assignments() *assignment.Registry        { return e.assignments }
func (e *Engine) Professions() *profession.Registry        { return e.professions }
func (e *Engine) Directory() *directory.Directory          { return e.directory }
func (e *Engine) Lifecycle() *shared.LifecycleStateMachine { return e.lifecycle }

// Running reports whether Run is driving the loop. Safe from any goroutine.
func (e *Engine) Running() bool {
	return e.loop.Load() != nil
}

// CurrentGrid returns the latest walkability snapshot. Safe from any goroutine.
func (e *Engine) CurrentGrid() *grid.Grid {
	return e.grid.Load()
}

// RebuildGrid replaces the walkability grid from scratch and announces it
func (e *Engine) RebuildGrid(reason string) {
	e.gridVersion++
	g := grid.Build(e.world.Width(), e.world.Height(), e.gridVersion, e.world)
	e.grid.Store(g)
	e.bus.Publish(events.GridRebuilt{Version: g.Version(), Reason: reason, Blocked: g.BlockedCount()})
	e.logger.Debug("grid rebuilt", "version", g.Version(), "reason", reason, "blocked", g.BlockedCount())
}

// Tick advances the simulation by one frame: due timers first, then queued
// path searches. Returns the number of timers fired.
func (e *Engine) Tick() int {
	start := time.Now()
	fired := e.sched.RunDue()
	e.paths.Calculate()
	e.ticks.Add(1)
	if e.opts.TickObserver != nil {
		e.opts.TickObserver(time.Since(start))
	}
	return fired
}

// Ticks returns how many frames have run
func (e *Engine) Ticks() uint64 {
	return e.ticks.Load()
}

func (e *Engine) housekeeping() {
	removed := e.directory.Housekeeping()
	released := e.assignments.CleanOrphaned(e.directory.Has, func(key string) bool {
		_, _, ok := e.world.StructureByKey(key)
		return ok
	})
	if removed > 0 || released > 0 {
		e.logger.Info("housekeeping", "workers_removed", removed, "assignments_released", released)
	}
}

// Run drives the loop until ctx is cancelled. Only one Run may be active.
func (e *Engine) Run(ctx context.Context) error {
	if !e.runMu.TryLock() {
		return fmt.Errorf("simulation loop already running")
	}
	defer e.runMu.Unlock()

	if err := e.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}
	state := &loopState{done: make(chan struct{})}
	e.loop.Store(state)
	defer func() {
		e.loop.Store(nil)
		close(state.done)
	}()
	e.logger.Info("simulation started", "frame", e.opts.FrameInterval, "width", e.opts.Width, "height", e.opts.Height)

	ticker := time.NewTicker(e.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := e.lifecycle.Stop(); err != nil {
				e.logger.Warn("failed to stop lifecycle", "error", err)
			}
			e.logger.Info("simulation stopped", "ticks", e.ticks.Load())
			return nil
		case <-ticker.C:
			if err := e.safeTick(); err != nil {
				_ = e.lifecycle.Fail(err)
				return err
			}
		case fn := <-e.inbox:
			fn()
		}
	}
}

// Recover clears a failed loop so Run may be called again. World state is
// kept as the failed tick left it.
func (e *Engine) Recover() error {
	if e.loop.Load() != nil {
		return fmt.Errorf("simulation loop is running")
	}
	return e.lifecycle.Reset()
}

func (e *Engine) safeTick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulation tick panicked: %v", r)
			e.logger.Error("tick panicked", "panic", r)
		}
	}()
	e.Tick()
	return nil
}

// Exec runs fn on the simulation loop and waits for it. When the loop is not
// running, fn runs on the caller's goroutine.
func (e *Engine) Exec(ctx context.Context, fn func() error) error {
	state := e.loop.Load()
	if state == nil {
		return fn()
	}

	done := make(chan error, 1)
	job := func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("command panicked: %v", r)
			}
		}()
		done <- fn()
	}

	select {
	case e.inbox <- job:
	case <-state.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	// the loop runs an accepted job to completion before anything else
	return <-done
}

// Assign binds a live worker to an existing structure
func (e *Engine) Assign(workerID, structureKey string) error {
	if !e.directory.Has(workerID) {
		return shared.NewNotFoundError("worker", workerID)
	}
	if _, _, ok := e.world.StructureByKey(structureKey); !ok {
		return shared.NewNotFoundError("structure", structureKey)
	}
	if _, err := e.assignments.Assign(workerID, structureKey); err != nil {
		return err
	}
	e.logger.Info("worker assigned", "worker", workerID, "structure", structureKey)
	return nil
}

// RemoveStructure deletes a structure by key and releases its assignment
func (e *Engine) RemoveStructure(key string) error {
	h, _, ok := e.world.StructureByKey(key)
	if !ok {
		return shared.NewNotFoundError("structure", key)
	}
	e.assignments.ReleaseStructure(key, "structure removed")
	e.world.RemoveStructure(h)
	return nil
}

// Status summarizes the engine
type Status struct {
	Lifecycle   shared.LifecycleStatus
	Uptime      time.Duration
	Ticks       uint64
	Workers     int
	Structures  int
	GridVersion uint64
	Assignments int
	PendingPath int
	Timers      int
	Stock       map[resource.Kind]uint32
}

// Status snapshots the engine's counters
func (e *Engine) Status() Status {
	return Status{
		Lifecycle:   e.lifecycle.Status(),
		Uptime:      e.lifecycle.Uptime(),
		Ticks:       e.ticks.Load(),
		Workers:     e.directory.Len(),
		Structures:  len(e.world.AllStructures()),
		GridVersion: e.CurrentGrid().Version(),
		Assignments: e.assignments.Len(),
		PendingPath: e.paths.Pending(),
		Timers:      e.sched.Pending(),
		Stock:       e.world.ColonyStock(),
	}
}
