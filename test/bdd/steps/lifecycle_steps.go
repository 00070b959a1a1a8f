package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

type lifecycleContext struct {
	lifecycle       *shared.LifecycleStateMachine
	clock           *shared.MockClock
	transitionError error
}

func (lc *lifecycleContext) reset() {
	lc.clock = shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	lc.lifecycle = nil
	lc.transitionError = nil
}

func (lc *lifecycleContext) current() (*shared.LifecycleStateMachine, error) {
	if lc.lifecycle == nil {
		return nil, fmt.Errorf("no lifecycle available")
	}
	return lc.lifecycle, nil
}

// Given steps

func (lc *lifecycleContext) aLifecycleInState(state string) error {
	lc.lifecycle = shared.NewLifecycleStateMachine(lc.clock)

	switch shared.LifecycleStatus(state) {
	case shared.LifecycleStatusPending:
		return nil
	case shared.LifecycleStatusRunning:
		return lc.lifecycle.Start()
	case shared.LifecycleStatusStopped:
		if err := lc.lifecycle.Start(); err != nil {
			return err
		}
		return lc.lifecycle.Stop()
	case shared.LifecycleStatusFailed:
		if err := lc.lifecycle.Start(); err != nil {
			return err
		}
		return lc.lifecycle.Fail(fmt.Errorf("test error"))
	default:
		return fmt.Errorf("unknown state: %s", state)
	}
}

func (lc *lifecycleContext) aLifecycleThatRanFor(seconds int, outcome string) error {
	lc.lifecycle = shared.NewLifecycleStateMachine(lc.clock)
	if err := lc.lifecycle.Start(); err != nil {
		return err
	}
	lc.clock.Advance(time.Duration(seconds) * time.Second)

	if outcome == "failed" {
		return lc.lifecycle.Fail(fmt.Errorf("test error"))
	}
	return lc.lifecycle.Stop()
}

func (lc *lifecycleContext) secondsHavePassed(seconds int) error {
	lc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

// When steps

func (lc *lifecycleContext) iCreateANewLifecycle() error {
	lc.lifecycle = shared.NewLifecycleStateMachine(lc.clock)
	return nil
}

func (lc *lifecycleContext) iStartTheLifecycle() error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	lc.transitionError = sm.Start()
	return nil
}

func (lc *lifecycleContext) iStopTheLifecycle() error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	lc.transitionError = sm.Stop()
	return nil
}

func (lc *lifecycleContext) iFailTheLifecycleWithError(msg string) error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	lc.transitionError = sm.Fail(fmt.Errorf("%s", msg))
	return nil
}

func (lc *lifecycleContext) iResetTheLifecycle() error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	lc.transitionError = sm.Reset()
	return nil
}

// Then steps

func (lc *lifecycleContext) theLifecycleStatusShouldBe(expected string) error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	if actual := string(sm.Status()); actual != expected {
		return fmt.Errorf("expected status %s, got %s", expected, actual)
	}
	return nil
}

func (lc *lifecycleContext) theStartedTimestampShouldBeNil() error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	if sm.StartedAt() != nil {
		return fmt.Errorf("started timestamp should be nil but was %v", *sm.StartedAt())
	}
	return nil
}

func (lc *lifecycleContext) theStartedTimestampShouldBeSet() error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	if sm.StartedAt() == nil {
		return fmt.Errorf("started timestamp should be set but was nil")
	}
	return nil
}

func (lc *lifecycleContext) theLifecycleShouldBeRunning(not string) error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	want := not == ""
	if sm.IsRunning() != want {
		return fmt.Errorf("expected IsRunning to return %t", want)
	}
	return nil
}

func (lc *lifecycleContext) theTransitionShouldFailWith(expected string) error {
	if lc.transitionError == nil {
		return fmt.Errorf("expected transition to fail with '%s', but it succeeded", expected)
	}
	if lc.transitionError.Error() != expected {
		return fmt.Errorf("expected error '%s', got '%s'", expected, lc.transitionError.Error())
	}
	return nil
}

func (lc *lifecycleContext) theLastErrorShouldBe(expected string) error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	if sm.LastError() == nil {
		return fmt.Errorf("expected last error to be '%s', but it was nil", expected)
	}
	if sm.LastError().Error() != expected {
		return fmt.Errorf("expected last error '%s', got '%s'", expected, sm.LastError().Error())
	}
	return nil
}

func (lc *lifecycleContext) theLastErrorShouldBeNil() error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	if sm.LastError() != nil {
		return fmt.Errorf("expected no last error, got '%s'", sm.LastError())
	}
	return nil
}

func (lc *lifecycleContext) theUptimeShouldBe(seconds int) error {
	sm, err := lc.current()
	if err != nil {
		return err
	}
	want := time.Duration(seconds) * time.Second
	if got := sm.Uptime(); got != want {
		return fmt.Errorf("expected uptime %v, got %v", want, got)
	}
	return nil
}

// InitializeLifecycleScenario registers the simulation lifecycle steps
func InitializeLifecycleScenario(ctx *godog.ScenarioContext) {
	lc := &lifecycleContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		lc.reset()
		return ctx, nil
	})

	ctx.Step(`^a lifecycle in "([^"]*)" state$`, lc.aLifecycleInState)
	ctx.Step(`^a lifecycle that ran for (\d+) seconds and (stopped|failed)$`, lc.aLifecycleThatRanFor)
	ctx.Step(`^(\d+) seconds have passed$`, lc.secondsHavePassed)

	ctx.Step(`^I create a new lifecycle$`, lc.iCreateANewLifecycle)
	ctx.Step(`^I start the lifecycle$`, lc.iStartTheLifecycle)
	ctx.Step(`^I stop the lifecycle$`, lc.iStopTheLifecycle)
	ctx.Step(`^I fail the lifecycle with error "([^"]*)"$`, lc.iFailTheLifecycleWithError)
	ctx.Step(`^I reset the lifecycle$`, lc.iResetTheLifecycle)

	ctx.Step(`^the lifecycle status should be "([^"]*)"$`, lc.theLifecycleStatusShouldBe)
	ctx.Step(`^the started timestamp should be nil$`, lc.theStartedTimestampShouldBeNil)
	ctx.Step(`^the started timestamp should be set$`, lc.theStartedTimestampShouldBeSet)
	ctx.Step(`^the lifecycle should (not )?be running$`, lc.theLifecycleShouldBeRunning)
	ctx.Step(`^the transition should fail with "([^"]*)"$`, lc.theTransitionShouldFailWith)
	ctx.Step(`^the last error should be nil$`, lc.theLastErrorShouldBeNil)
	ctx.Step(`^the last error should be "([^"]*)"$`, lc.theLastErrorShouldBe)
	ctx.Step(`^the uptime should be (\d+) seconds$`, lc.theUptimeShouldBe)
}
