package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus represents where a long-running component is in its lifecycle
type LifecycleStatus string

const (
	LifecycleStatusPending LifecycleStatus = "PENDING"
	LifecycleStatusRunning LifecycleStatus = "RUNNING"
	LifecycleStatusStopped LifecycleStatus = "STOPPED"
	LifecycleStatusFailed  LifecycleStatus = "FAILED"
)

// LifecycleStateMachine tracks PENDING → RUNNING → STOPPED/FAILED for the
// simulation engine and the daemon that hosts it.
//
// Invariants:
// - Only a PENDING or STOPPED machine can start
// - STOPPED and FAILED are terminal until the next Start
type LifecycleStateMachine struct {
	status    LifecycleStatus
	createdAt time.Time
	startedAt *time.Time
	stoppedAt *time.Time
	lastError error
	clock     Clock
}

// NewLifecycleStateMachine creates a new lifecycle state machine in PENDING state
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewRealClock()
	}
	return &LifecycleStateMachine{
		status:    LifecycleStatusPending,
		createdAt: clock.Now(),
		clock:     clock,
	}
}

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) CreatedAt() time.Time    { return sm.createdAt }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) LastError() error        { return sm.lastError }

// Start transitions from PENDING or STOPPED to RUNNING state
func (sm *LifecycleStateMachine) Start() error {
	if sm.status != LifecycleStatusPending && sm.status != LifecycleStatusStopped {
		return fmt.Errorf("cannot start from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusRunning
	sm.startedAt = &now
	sm.stoppedAt = nil
	sm.lastError = nil
	return nil
}

// Stop transitions RUNNING to STOPPED
func (sm *LifecycleStateMachine) Stop() error {
	if sm.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot stop from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusStopped
	sm.stoppedAt = &now
	return nil
}

// Fail records err and transitions to FAILED from any non-terminal state
func (sm *LifecycleStateMachine) Fail(err error) error {
	if sm.status == LifecycleStatusStopped || sm.status == LifecycleStatusFailed {
		return fmt.Errorf("cannot fail from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusFailed
	sm.lastError = err
	sm.stoppedAt = &now
	return nil
}

// Reset moves a FAILED machine back to STOPPED so it can be started again.
// The last error is kept for inspection.
func (sm *LifecycleStateMachine) Reset() error {
	if sm.status != LifecycleStatusFailed {
		return fmt.Errorf("cannot reset from %s state", sm.status)
	}
	sm.status = LifecycleStatusStopped
	return nil
}

// IsRunning returns true while the component is executing
func (sm *LifecycleStateMachine) IsRunning() bool {
	return sm.status == LifecycleStatusRunning
}

// Uptime returns how long the component has been (or was) running.
// Returns 0 if never started.
func (sm *LifecycleStateMachine) Uptime() time.Duration {
	if sm.startedAt == nil {
		return 0
	}

	end := sm.clock.Now()
	if sm.stoppedAt != nil {
		end = *sm.stoppedAt
	}
	return end.Sub(*sm.startedAt)
}
