package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/adapters/metrics"
	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

const testScenario = `
width: 16
height: 12
seed: 3
structures:
  - kind: stockpile
    key: depot
    x: 1
    y: 1
    capacity: {wood: 50}
    initial: {wood: 4}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	scenario := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(scenario, []byte(testScenario), 0o644))

	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "colony.db")
	cfg.Simulation.ProfessionsPath = "../../configs/professions.yaml"
	cfg.Simulation.ScenarioPath = scenario
	cfg.Simulation.FrameInterval = 5 * time.Millisecond
	cfg.Simulation.AutosaveInterval = time.Hour
	cfg.Daemon.SocketPath = filepath.Join(dir, "d.sock")
	cfg.Daemon.PIDFile = filepath.Join(dir, "d.pid")
	config.SetDefaults(cfg)
	return cfg
}

// start runs d until the returned stop func is called, which yields run's error
func start(t *testing.T, d *daemon) (client *grpcAdapter.DaemonClient, stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(d.cfg.Daemon.SocketPath)
		return err == nil && d.engine.Running()
	}, 2*time.Second, 5*time.Millisecond)

	client, err := grpcAdapter.NewDaemonClient(d.cfg.Daemon.SocketPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("daemon did not stop")
			return nil
		}
	}
}

func TestDaemon_ServesAndSavesOnShutdown(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	d, err := newDaemon(context.Background(), cfg, nil)
	require.NoError(t, err)
	client, stop := start(t, d)

	// Act
	healthy, err := client.Health(context.Background())
	require.NoError(t, err)
	spawned, err := client.SpawnWorker(context.Background(), &commands.SpawnWorkerCommand{
		Profession: "hauler", X: 5, Y: 5, AssignTo: "depot",
	})
	require.NoError(t, err)
	status, err := client.Status(context.Background())
	require.NoError(t, err)
	stopErr := stop()

	// Assert
	require.NoError(t, stopErr)
	assert.True(t, healthy)
	assert.NotEmpty(t, spawned.WorkerID)
	assert.Equal(t, 1, status.Status.Workers)
	assert.Equal(t, uint32(4), status.Status.Stock["wood"])

	_, statErr := os.Stat(cfg.Daemon.SocketPath)
	assert.True(t, os.IsNotExist(statErr), "socket removed on shutdown")

	db, err := database.NewConnection(&cfg.Database)
	require.NoError(t, err)
	defer database.Close(db)
	snap, found, err := persistence.NewGormLedgerSnapshotRepository(db).Load(context.Background(),
		events.Owner{Type: events.OwnerStructure, Key: "depot"})
	require.NoError(t, err)
	require.True(t, found, "final save writes the depot ledger")
	assert.Equal(t, uint32(4), snap.Amounts[resource.Wood])
}

func TestDaemon_RestoresSavedStateOnStart(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	db, err := database.NewConnection(&cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, persistence.NewGormLedgerSnapshotRepository(db).Save(context.Background(), common.LedgerSnapshot{
		Owner:   events.Owner{Type: events.OwnerStructure, Key: "depot"},
		Amounts: map[resource.Kind]uint32{resource.Wood: 17},
		SavedAt: time.Now(),
	}))
	require.NoError(t, persistence.NewGormAssignmentRepository(db).Upsert(context.Background(), common.AssignmentRecord{
		WorkerID:     "ghost",
		StructureKey: "depot",
	}))
	require.NoError(t, database.Close(db))

	// Act
	d, err := newDaemon(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer database.Close(d.db)

	// Assert
	_, depot, ok := d.engine.World().StructureByKey("depot")
	require.True(t, ok)
	assert.Equal(t, uint32(17), depot.Storage().Amount(resource.Wood))

	active, err := persistence.NewGormAssignmentRepository(d.db).FindActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active, "bindings of unknown workers are released")
}

func TestDaemon_RestartsFailedLoop(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	cfg.Daemon.RestartPolicy = config.RestartPolicyConfig{
		Enabled:           true,
		MaxAttempts:       2,
		Delay:             time.Millisecond,
		BackoffMultiplier: 1,
	}
	d, err := newDaemon(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer database.Close(d.db)
	d.engine.Scheduler().After(0, func() { panic("bad timer") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() { done <- d.runLoop(ctx) }()
	require.Eventually(t, func() bool {
		// the first tick panics before counting, so later ticks come from a restarted loop
		return d.engine.Running() && d.engine.Ticks() > 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	// Assert
	assert.NoError(t, <-done)
}

func TestDaemon_FailsWhenRestartsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Daemon.RestartPolicy.Enabled = false
	d, err := newDaemon(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer database.Close(d.db)
	d.engine.Scheduler().After(0, func() { panic("bad timer") })

	err = d.runLoop(context.Background())

	assert.ErrorContains(t, err, "bad timer")
	assert.Equal(t, shared.LifecycleStatusFailed, d.engine.Lifecycle().Status())
}

func TestDaemon_MetricsEnabledWiresCollectors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true

	d, err := newDaemon(context.Background(), cfg, nil)

	require.NoError(t, err)
	defer database.Close(d.db)
	assert.True(t, metrics.IsEnabled())
	assert.NotNil(t, d.sim)
	assert.Equal(t, "localhost:9090", d.httpAddr)

	_, err = d.save(context.Background())
	require.NoError(t, err)
	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "colony_sim_commands_total")
}

func TestDaemon_BadProfessionsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.ProfessionsPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := newDaemon(context.Background(), cfg, nil)

	assert.ErrorContains(t, err, "failed to load professions")
}
