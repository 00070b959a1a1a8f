package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/adapters/catalog"
	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/adapters/metrics"
	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/adapters/stream"
	"github.com/andrescamacho/colony-go/internal/adapters/terrain"
	"github.com/andrescamacho/colony-go/internal/adapters/web"
	"github.com/andrescamacho/colony-go/internal/application/colony"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

// daemon holds every long-lived component of one colony process
type daemon struct {
	cfg    *config.Config
	logger *log.Logger

	db       *gorm.DB
	engine   *simulation.Engine
	journal  *simulation.Journal
	mediator mediator.Mediator
	hub      *stream.Hub
	sim      *metrics.SimulationMetricsCollector
	grpc     *grpcAdapter.DaemonServer

	// httpAddr is where the metrics/events surface binds; empty disables it
	httpAddr string
	http     *web.Server
}

// newDaemon opens storage, loads the colony and wires the control planes.
// Nothing is served until run.
func newDaemon(ctx context.Context, cfg *config.Config, logger *log.Logger) (*daemon, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &daemon{cfg: cfg, logger: logger}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	d.db = db
	logger.Info("database connected", "type", cfg.Database.Type)

	if err := d.build(ctx); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return d, nil
}

func (d *daemon) build(ctx context.Context) error {
	cfg, logger := d.cfg, d.logger
	sim := cfg.Simulation

	resources, err := catalog.LoadResources(sim.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load resource catalog: %w", err)
	}
	professions, err := catalog.LoadProfessions(sim.ProfessionsPath, resources)
	if err != nil {
		return fmt.Errorf("failed to load professions: %w", err)
	}
	layout, err := catalog.LoadScenario(sim.ScenarioPath, resources)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	width, height, seed := sim.Width, sim.Height, sim.Seed
	if layout.Width > 0 && layout.Height > 0 {
		width, height = layout.Width, layout.Height
	}
	if layout.HasSeed {
		seed = layout.Seed
	}
	rocks := terrain.Apply(layout.Scenario, width, height, seed, terrain.Options{
		Threshold: sim.Terrain.Threshold,
		Scale:     sim.Terrain.Scale,
		Margin:    sim.Terrain.Margin,
	})
	logger.Info("scenario loaded", "name", layout.Scenario.Name, "width", width, "height", height, "seed", seed, "rock_zones", rocks)

	opts := simulation.Options{
		Width:                 width,
		Height:                height,
		Seed:                  seed,
		FrameInterval:         sim.FrameInterval,
		PathIterationsPerTick: sim.PathIterationsPerTick,
		HousekeepingInterval:  sim.HousekeepingInterval,
		Worker: worker.Settings{
			TickInterval:           sim.Worker.TickInterval,
			WaitCooldown:           sim.Worker.WaitCooldown,
			DepositDuration:        sim.Worker.DepositDuration,
			BlacklistClearInterval: sim.Worker.BlacklistClearInterval,
			FallbackRadius:         sim.Worker.FallbackRadius,
			NoTargetLogInterval:    sim.Worker.NoTargetLogInterval,
		},
	}

	var commandMetrics *metrics.CommandMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		commandMetrics = metrics.NewCommandMetricsCollector()
		if err := commandMetrics.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
		// the sampler reads d.engine, which is set below before Start
		d.sim = metrics.NewSimulationMetricsCollector(func(ctx context.Context) (metrics.Sample, error) {
			return metrics.EngineSampler(d.engine)(ctx)
		}, cfg.Daemon.HealthCheckInterval, logger.WithPrefix("metrics"))
		if err := d.sim.Register(); err != nil {
			return fmt.Errorf("failed to register simulation metrics: %w", err)
		}
		metrics.SetGlobalSimulationCollector(d.sim)
		opts.PathOutcome = d.sim.ObservePath
		opts.TickObserver = d.sim.ObserveTick
		d.httpAddr = fmt.Sprintf("%s:%d", cfg.Metrics.Host, cfg.Metrics.Port)
	}

	d.engine = simulation.NewEngine(resources, professions, opts, nil, logger.WithPrefix("sim"))
	loaded, err := d.engine.Load(layout.Scenario)
	if err != nil {
		return fmt.Errorf("failed to populate colony: %w", err)
	}
	logger.Info("colony populated",
		"structures", loaded.Structures,
		"harvestables", loaded.Harvestables,
		"zones", loaded.Zones,
		"workers", len(loaded.WorkerIDs))

	repos := colony.Repositories{
		Ledgers:     persistence.NewGormLedgerSnapshotRepository(d.db),
		Assignments: persistence.NewGormAssignmentRepository(d.db),
		Journal:     persistence.NewGormResourceJournalRepository(d.db),
	}
	d.journal = simulation.NewJournal(repos.Journal, d.engine.Clock(), sim.JournalBuffer)
	d.hub = stream.NewHub(0, d.engine.Clock(), logger.WithPrefix("stream"))

	bus := d.engine.Bus()
	bus.Subscribe(d.journal.Handle)
	bus.Subscribe(d.hub.HandleEvent)
	if d.sim != nil {
		bus.Subscribe(d.sim.HandleEvent)
	}

	d.mediator = mediator.NewMediator()
	if commandMetrics != nil {
		d.mediator.Use(metrics.PrometheusMiddleware(commandMetrics))
	}
	if err := colony.RegisterHandlers(d.mediator, d.engine, repos, d.journal); err != nil {
		return err
	}

	// the loop is not running yet, so both restores run inline
	ctx = common.WithLogger(ctx, logger)
	restored, err := d.mediator.Send(ctx, &commands.RestoreStateCommand{})
	if err != nil {
		return fmt.Errorf("failed to restore ledgers: %w", err)
	}
	state := restored.(*commands.RestoreStateResponse)
	bindings, err := d.mediator.Send(ctx, &commands.RestoreAssignmentsCommand{})
	if err != nil {
		return fmt.Errorf("failed to restore assignments: %w", err)
	}
	assigned := bindings.(*commands.RestoreAssignmentsResponse)
	logger.Info("saved state restored",
		"ledgers", state.Restored,
		"ledgers_offered", state.Offered,
		"assignments", assigned.Restored,
		"assignments_released", assigned.Released)

	d.grpc = grpcAdapter.NewDaemonServer(d.mediator, logger.WithPrefix("grpc"))
	return nil
}

// status answers /healthz and /status through the same query the CLI uses
func (d *daemon) status(ctx context.Context) (dtos.StatusDTO, error) {
	resp, err := d.mediator.Send(ctx, &queries.StatusQuery{})
	if err != nil {
		return dtos.StatusDTO{}, err
	}
	return resp.(*queries.StatusResponse).Status, nil
}

// run serves the control planes and drives the simulation until ctx is
// cancelled, then saves the colony one last time
func (d *daemon) run(ctx context.Context) error {
	logger := d.logger

	if err := os.MkdirAll(filepath.Dir(d.cfg.Daemon.SocketPath), 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := d.grpc.Listen(d.cfg.Daemon.SocketPath); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.grpc.Start(); err != nil {
			logger.Error("gRPC server stopped", "error", err)
		}
	}()

	if d.httpAddr != "" {
		router := web.NewRouter(web.RouterOptions{
			Status:      d.status,
			Registry:    metrics.GetRegistry(),
			MetricsPath: d.cfg.Metrics.Path,
			Events:      d.hub.Handler(),
			EventsPath:  d.cfg.Daemon.EventsPath,
			Logger:      logger.WithPrefix("http"),
		})
		srv, err := web.Listen(d.httpAddr, router)
		if err != nil {
			d.grpc.Stop()
			wg.Wait()
			return err
		}
		d.http = srv
		logger.Info("http server listening", "address", srv.Addr())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(); err != nil {
				logger.Error("http server stopped", "error", err)
			}
		}()
	}

	if d.sim != nil {
		d.sim.Start(ctx)
	}

	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		d.autosave(ctx)
	}()

	loopErr := d.runLoop(ctx)
	<-autosaveDone

	err := errors.Join(loopErr, d.shutdown())
	wg.Wait()
	return err
}

// runLoop runs the simulation, restarting it after a failed tick as the
// restart policy allows
func (d *daemon) runLoop(ctx context.Context) error {
	policy := d.cfg.Daemon.RestartPolicy
	for attempt := 1; ; attempt++ {
		err := d.engine.Run(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		if !policy.Enabled || attempt > policy.MaxAttempts {
			return fmt.Errorf("simulation loop failed: %w", err)
		}

		delay := policy.DelayFor(attempt)
		d.logger.Warn("restarting simulation loop", "attempt", attempt, "delay", delay, "error", err)
		metrics.RecordRestart(attempt)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		if err := d.engine.Recover(); err != nil {
			return fmt.Errorf("failed to recover simulation loop: %w", err)
		}
	}
}

// autosave persists the colony on the configured interval until ctx ends
func (d *daemon) autosave(ctx context.Context) {
	interval := d.cfg.Simulation.AutosaveInterval
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.save(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("autosave failed", "error", err)
			}
		}
	}
}

func (d *daemon) save(ctx context.Context) (*commands.SaveStateResponse, error) {
	resp, err := d.mediator.Send(common.WithLogger(ctx, d.logger), &commands.SaveStateCommand{})
	if err != nil {
		metrics.RecordAutosave(0, false)
		return nil, err
	}
	saved := resp.(*commands.SaveStateResponse)
	metrics.RecordAutosave(saved.Ledgers, true)
	return saved, nil
}

// shutdown stops the control planes, writes a final save and closes storage
func (d *daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Daemon.ShutdownTimeout)
	defer cancel()

	var errs []error
	d.hub.Close()
	if d.http != nil {
		if err := d.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	d.grpc.Stop()
	if d.sim != nil {
		d.sim.Stop()
	}

	// the loop has stopped, so the save snapshots inline
	if saved, err := d.save(ctx); err != nil {
		errs = append(errs, fmt.Errorf("final save: %w", err))
	} else {
		d.logger.Info("final save complete", "ledgers", saved.Ledgers, "journal", saved.JournalEntries)
	}
	if dropped := d.journal.Dropped(); dropped > 0 {
		d.logger.Warn("journal entries dropped", "count", dropped)
	}

	if err := database.Close(d.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
