package shared_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

func TestLifecycleStateMachine_StartStopRestart(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Time{})
	sm := shared.NewLifecycleStateMachine(clock)
	require.Equal(t, shared.LifecycleStatusPending, sm.Status())

	// Act
	require.NoError(t, sm.Start())
	clock.Advance(90 * time.Second)
	require.NoError(t, sm.Stop())
	clock.Advance(time.Hour)

	// Assert
	assert.Equal(t, shared.LifecycleStatusStopped, sm.Status())
	assert.Equal(t, 90*time.Second, sm.Uptime())
	assert.Error(t, sm.Stop())
	assert.NoError(t, sm.Start(), "stopped machine can be restarted")
	assert.True(t, sm.IsRunning())
}

func TestLifecycleStateMachine_FailIsTerminal(t *testing.T) {
	// Arrange
	sm := shared.NewLifecycleStateMachine(shared.NewMockClock(time.Time{}))
	require.NoError(t, sm.Start())
	boom := errors.New("listener closed")

	// Act
	require.NoError(t, sm.Fail(boom))

	// Assert
	assert.Equal(t, shared.LifecycleStatusFailed, sm.Status())
	assert.Equal(t, boom, sm.LastError())
	assert.Error(t, sm.Start())
	assert.Error(t, sm.Fail(boom))
}

func TestLifecycleStateMachine_ResetAfterFailure(t *testing.T) {
	sm := shared.NewLifecycleStateMachine(shared.NewMockClock(time.Time{}))
	assert.Error(t, sm.Reset(), "only a failed machine can be reset")

	require.NoError(t, sm.Start())
	boom := errors.New("tick panicked")
	require.NoError(t, sm.Fail(boom))

	require.NoError(t, sm.Reset())
	assert.Equal(t, shared.LifecycleStatusStopped, sm.Status())
	assert.Equal(t, boom, sm.LastError())
	assert.NoError(t, sm.Start())
	assert.Nil(t, sm.LastError())
}

func TestAssignmentErrors_UnwrapToDomainError(t *testing.T) {
	err := error(shared.NewWorkerAlreadyAssignedError("w-1", "store-a"))

	var assignErr *shared.WorkerAlreadyAssignedError
	require.True(t, errors.As(err, &assignErr))
	assert.Equal(t, "w-1", assignErr.WorkerID)
	assert.Equal(t, "store-a", assignErr.StructureKey)
	assert.Contains(t, err.Error(), "already assigned")
}
