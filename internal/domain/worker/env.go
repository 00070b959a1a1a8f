package worker

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/pathfinding"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/targeting"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// World is the slice of the world a worker touches directly
type World interface {
	Harvestable(h world.Handle) (*world.Harvestable, bool)
	Structure(h world.Handle) (*world.Structure, bool)
	DestroyHarvestable(h world.Handle) bool
}

// Selector chooses targets
type Selector interface {
	SelectHarvestTarget(seeker targeting.Seeker) (*targeting.Target, bool)
	SelectDepositTarget(seeker targeting.Seeker) (*targeting.Target, bool)
}

// Paths resolves routes asynchronously
type Paths interface {
	Request(start, end grid.Point, cb pathfinding.Callback) pathfinding.QueryID
	Cancel(id pathfinding.QueryID) bool
	NearestWalkable(target grid.Point, maxRadius int) (grid.Point, bool)
}

// Settings are the timing constants shared by every worker
type Settings struct {
	TickInterval           time.Duration
	WaitCooldown           time.Duration
	DepositDuration        time.Duration
	BlacklistClearInterval time.Duration
	FallbackRadius         int
	NoTargetLogInterval    time.Duration
}

// DefaultSettings returns the stock timings
func DefaultSettings() Settings {
	return Settings{
		TickInterval:           500 * time.Millisecond,
		WaitCooldown:           3 * time.Second,
		DepositDuration:        time.Second,
		BlacklistClearInterval: targeting.DefaultClearInterval,
		FallbackRadius:         2,
		NoTargetLogInterval:    30 * time.Second,
	}
}

// Env bundles the collaborators every worker shares
type Env struct {
	Catalog   *resource.Catalog
	World     World
	Selector  Selector
	Paths     Paths
	Scheduler *shared.Scheduler
	Bus       events.Publisher
	Roll      func() float64
	Logger    *log.Logger
	Settings  Settings
}

func (e *Env) validate() {
	switch {
	case e == nil:
		panic("worker: nil env")
	case e.Catalog == nil, e.World == nil, e.Selector == nil, e.Paths == nil, e.Scheduler == nil:
		panic("worker: env is missing a collaborator")
	}
	if e.Bus == nil {
		e.Bus = nopPublisher{}
	}
	if e.Roll == nil {
		e.Roll = rand.New(rand.NewSource(1)).Float64
	}
	if e.Logger == nil {
		e.Logger = log.New(io.Discard)
	}
	defaults := DefaultSettings()
	if e.Settings.TickInterval <= 0 {
		e.Settings.TickInterval = defaults.TickInterval
	}
	if e.Settings.WaitCooldown <= 0 {
		e.Settings.WaitCooldown = defaults.WaitCooldown
	}
	if e.Settings.DepositDuration < 0 {
		e.Settings.DepositDuration = defaults.DepositDuration
	}
	if e.Settings.BlacklistClearInterval <= 0 {
		e.Settings.BlacklistClearInterval = defaults.BlacklistClearInterval
	}
	if e.Settings.FallbackRadius <= 0 {
		e.Settings.FallbackRadius = defaults.FallbackRadius
	}
	if e.Settings.NoTargetLogInterval <= 0 {
		e.Settings.NoTargetLogInterval = defaults.NoTargetLogInterval
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}
