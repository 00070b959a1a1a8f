package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// FrameInterval is the simulated frame length used by StepEngine
const FrameInterval = 100 * time.Millisecond

// Woodcutter is the profession most tests use: chops trees, hauls wood to
// stockpiles.
func Woodcutter() *profession.Config {
	return &profession.Config{
		ID:            "woodcutter",
		CarryCapacity: 10,
		HarvestSpeed:  time.Second,
		MoveSpeed:     1,
		DamagePerHit:  10,
		HarvestTargets: []profession.TargetRule{
			{Action: profession.HarvestEntity, TargetKinds: []string{"tree"}, Priority: 1},
		},
		DepositTargets: []profession.TargetRule{
			{Action: profession.DepositToStructure, TargetKinds: []string{"stockpile"}, Priority: 1},
		},
	}
}

// Hauler moves goods out of any structure that holds them into stockpiles
func Hauler() *profession.Config {
	return &profession.Config{
		ID:            "hauler",
		CarryCapacity: 20,
		HarvestSpeed:  time.Second,
		MoveSpeed:     2,
		HarvestTargets: []profession.TargetRule{
			{Action: profession.HarvestStructure, TargetKinds: []string{"sawmill"}, Priority: 1},
		},
		DepositTargets: []profession.TargetRule{
			{Action: profession.DepositToStructure, TargetKinds: []string{"stockpile"}, Priority: 1},
		},
	}
}

// TestEngine bundles an engine with the mock clock that drives it
type TestEngine struct {
	*simulation.Engine
	Clock *shared.MockClock
}

// NewTestEngine builds a width x height colony with the default catalog and
// the given professions (woodcutter and hauler when none are passed)
func NewTestEngine(t *testing.T, width, height int, configs ...*profession.Config) *TestEngine {
	t.Helper()
	te, err := NewEngine(width, height, configs...)
	require.NoError(t, err)
	return te
}

// NewEngine is NewTestEngine for callers without a *testing.T, such as
// godog step definitions
func NewEngine(width, height int, configs ...*profession.Config) (*TestEngine, error) {
	if len(configs) == 0 {
		configs = []*profession.Config{Woodcutter(), Hauler()}
	}
	catalog := resource.DefaultCatalog()
	professions, err := profession.NewRegistry(catalog, configs...)
	if err != nil {
		return nil, err
	}

	clock := shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	opts := simulation.DefaultOptions()
	opts.Width, opts.Height = width, height
	opts.PathIterationsPerTick = 0

	return &TestEngine{
		Engine: simulation.NewEngine(catalog, professions, opts, clock, nil),
		Clock:  clock,
	}, nil
}

// StepEngine advances simulated time d in fixed frames, ticking the engine
// after each advance
func (te *TestEngine) StepEngine(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += FrameInterval {
		te.Clock.Advance(FrameInterval)
		te.Tick()
	}
}
