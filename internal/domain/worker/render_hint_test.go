package worker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
)

func TestRenderHintFor(t *testing.T) {
	carrying := map[resource.Kind]uint32{resource.Wood: 3, resource.Stone: 3, resource.Food: 1}

	tests := []struct {
		state   worker.State
		carried map[resource.Kind]uint32
		want    string
	}{
		{worker.Idle, nil, "idle"},
		{worker.Idle, carrying, "idle:stone"},
		{worker.MovingToHarvest, carrying, "walk"},
		{worker.Harvesting, carrying, "work"},
		{worker.MovingToDeposit, carrying, "carry:stone"},
		{worker.MovingToDeposit, map[resource.Kind]uint32{resource.Wood: 4, resource.Stone: 0}, "carry:wood"},
		{worker.Depositing, carrying, "drop:stone"},
		{worker.Waiting, nil, "wait"},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, worker.RenderHintFor(tt.state, tt.carried).String())
		})
	}
}

func TestAgent_RenderHintUsesAnimationBindings(t *testing.T) {
	// Arrange
	h := newHarness(t, 5, 5)
	cfg := woodcutter()
	cfg.AnimationBindings = map[string]string{"idle": "lumberjack_idle"}
	agent := worker.NewAgent("w1", cfg, grid.Point{}, h.env)
	agent.Carried().Add(resource.Wood, 2)

	// Act
	hint := agent.RenderHint()

	// Assert
	assert.Equal(t, "lumberjack_idle", hint.Animation)
	assert.Equal(t, resource.Wood, hint.Item)
}

func TestParseState(t *testing.T) {
	for _, s := range worker.AllStates() {
		parsed, ok := worker.ParseState(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
	_, ok := worker.ParseState("dancing")
	assert.False(t, ok)
	assert.True(t, worker.MovingToDeposit.IsMoving())
	assert.False(t, worker.Depositing.IsMoving())
}
