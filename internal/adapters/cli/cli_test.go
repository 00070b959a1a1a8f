package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/application/colony"
	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/world"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/test/helpers"
)

type cliFixture struct {
	socket string
	prefs  *config.UserConfigHandler
	engine *helpers.TestEngine
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()

	engine := helpers.NewTestEngine(t, 12, 12)
	_, err := engine.Load(&simulation.Scenario{
		Structures: []world.StructureSpec{{
			Kind:     "stockpile",
			Key:      "depot",
			Position: grid.Point{X: 0, Y: 0},
			Width:    1,
			Height:   1,
			Capacity: map[resource.Kind]uint32{resource.Wood: 40},
			Initial:  map[resource.Kind]uint32{resource.Wood: 9},
		}},
	})
	require.NoError(t, err)

	m := mediator.NewMediator()
	require.NoError(t, colony.RegisterHandlers(m, engine.Engine, colony.Repositories{
		Ledgers:     helpers.NewMockLedgerSnapshotRepository(),
		Assignments: helpers.NewMockAssignmentRepository(),
		Journal:     helpers.NewMockResourceJournalRepository(),
	}, nil))

	socket := filepath.Join(dir, "d.sock")
	server := grpcAdapter.NewDaemonServer(m, nil)
	require.NoError(t, server.Listen(socket))
	go func() { _ = server.Start() }()
	t.Cleanup(server.Stop)

	prefs := config.NewUserConfigHandlerAt(filepath.Join(dir, "prefs.yaml"))
	original := newUserConfigHandler
	newUserConfigHandler = func() (*config.UserConfigHandler, error) { return prefs, nil }
	t.Cleanup(func() { newUserConfigHandler = original })

	return &cliFixture{socket: socket, prefs: prefs, engine: engine}
}

// run executes colonyctl against the fixture daemon and returns stdout
func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--socket", f.socket}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_WorkerLifecycle(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)

	// Act
	out, err := f.run(t, "worker", "spawn", "--profession", "woodcutter", "--x", "3", "--y", "4", "--assign", "depot")
	require.NoError(t, err)
	listed, err := f.run(t, "worker", "list", "-o", "json")
	require.NoError(t, err)

	// Assert
	assert.Contains(t, out, "✓ Spawned")
	assert.Contains(t, out, "Assigned to depot")

	var workers []dtos.WorkerDTO
	require.NoError(t, json.Unmarshal([]byte(listed), &workers))
	require.Len(t, workers, 1)
	id := workers[0].ID
	assert.Equal(t, "woodcutter", workers[0].Profession)
	assert.Equal(t, "depot", workers[0].AssignedTo)

	table, err := f.run(t, "worker", "list")
	require.NoError(t, err)
	assert.Contains(t, table, "PROFESSION")
	assert.Contains(t, table, id)
	assert.Contains(t, table, "(3,4)")

	out, err = f.run(t, "worker", "profession", id, "hauler")
	require.NoError(t, err)
	assert.Contains(t, out, "is now a hauler")

	out, err = f.run(t, "worker", "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "hauler")

	_, err = f.run(t, "worker", "idle", id)
	require.NoError(t, err)
	_, err = f.run(t, "unassign", id)
	require.NoError(t, err)
	out, err = f.run(t, "worker", "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+id)
	assert.Zero(t, f.engine.Directory().Len())
}

func TestCLI_SpawnUsesDefaultProfession(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run(t, "worker", "spawn")
	require.Error(t, err)

	_, err = f.run(t, "config", "set", "default_profession", "hauler")
	require.NoError(t, err)
	_, err = f.run(t, "worker", "spawn", "--x", "1", "--y", "1")

	require.NoError(t, err)
	require.Len(t, f.engine.Directory().ByType("hauler"), 1)
}

func TestCLI_Structures(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)

	// Act
	out, err := f.run(t, "structure", "place", "--kind", "stockpile", "--key", "east",
		"--x", "6", "--y", "6", "--width", "2", "--capacity", "stone=20,wood=5", "--initial", "stone=3")
	require.NoError(t, err)
	shown, err := f.run(t, "structure", "show", "east")
	require.NoError(t, err)
	listed, err := f.run(t, "structures", "list", "--output", "json")
	require.NoError(t, err)

	// Assert
	assert.Contains(t, out, "✓ Placed stockpile east at (6,6)")
	assert.Contains(t, shown, "RESOURCE")
	assert.Regexp(t, `stone\s+3\s+20`, shown)
	assert.Regexp(t, `wood\s+0\s+5`, shown)

	var structures []dtos.StructureDTO
	require.NoError(t, json.Unmarshal([]byte(listed), &structures))
	assert.Len(t, structures, 2)

	_, err = f.run(t, "structure", "remove", "east")
	require.NoError(t, err)
	assert.Len(t, f.engine.World().AllStructures(), 1)
}

func TestCLI_PlaceRejectsNegativeAmounts(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "structure", "place", "--kind", "stockpile", "--capacity", "wood=-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be negative")
}

func TestCLI_AssignConflictShowsDaemonError(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	a, err := f.engine.SpawnWorker("hauler", grid.Point{X: 1, Y: 1})
	require.NoError(t, err)
	b, err := f.engine.SpawnWorker("hauler", grid.Point{X: 2, Y: 1})
	require.NoError(t, err)

	// Act
	_, err = f.run(t, "assign", a, "depot")
	require.NoError(t, err)
	_, err = f.run(t, "assign", b, "depot")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AlreadyExists")
}

func TestCLI_UnknownWorker(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "worker", "get", "ghost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotFound")
}

func TestCLI_StatusAndHealth(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")

	out, err = f.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Structures:")
	assert.Contains(t, out, "wood=9")

	out, err = f.run(t, "status", "-o", "json")
	require.NoError(t, err)
	var s dtos.StatusDTO
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 1, s.Structures)
}

func TestCLI_StateCommands(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "state", "save")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved")

	out, err = f.run(t, "state", "restore")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Restored")

	out, err = f.run(t, "state", "history", "--owner-key", "depot")
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded changes")

	_, err = f.run(t, "state", "history")
	assert.Error(t, err, "owner key is required")
}

func TestCLI_WorldCommands(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "world", "respawn")
	require.NoError(t, err)
	assert.Contains(t, out, "Respawned 0")

	_, err = f.run(t, "world", "clear-zone", "nowhere")
	assert.Error(t, err)
}

func TestCLI_OutputPreference(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.prefs.Set("output", "json"))

	out, err := f.run(t, "structure", "list")

	require.NoError(t, err)
	var structures []dtos.StructureDTO
	require.NoError(t, json.Unmarshal([]byte(out), &structures))
	assert.Len(t, structures, 1)

	_, err = f.run(t, "status", "-o", "yaml")
	assert.Error(t, err)
}

func TestResolveSocketPath(t *testing.T) {
	t.Setenv("COLONY_DAEMON_SOCKET_PATH", "")
	assert.Equal(t, defaultSocketPath, resolveSocketPath(&config.UserConfig{}))

	t.Setenv("COLONY_DAEMON_SOCKET_PATH", "/run/env.sock")
	assert.Equal(t, "/run/env.sock", resolveSocketPath(nil))
	assert.Equal(t, "/run/pref.sock", resolveSocketPath(&config.UserConfig{SocketPath: "/run/pref.sock"}))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", formatAmounts(nil))
	assert.Equal(t, "stone=1 wood=2", formatAmounts(map[string]uint32{"wood": 2, "stone": 1}))
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]uint32{"c": 1, "a": 1}, map[string]uint32{"b": 1, "a": 2}))
	assert.Equal(t, "postgres://colony:xxxxx@db:5432/colony", maskPassword("postgres://colony:secret@db:5432/colony"))
	assert.Equal(t, "colony.db", maskPassword("colony.db"))
}
