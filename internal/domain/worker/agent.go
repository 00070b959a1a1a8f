package worker

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/ledger"
	"github.com/andrescamacho/colony-go/internal/domain/pathfinding"
	"github.com/andrescamacho/colony-go/internal/domain/profession"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/internal/domain/targeting"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// Agent is one autonomous worker.
//
// The agent runs entirely on the simulation goroutine. A periodic tick
// re-evaluates the state machine only while Idle and not waiting on a path
// query or a timed step; everything else is driven by scheduled callbacks.
//
// Lifecycle:
//
//	Idle -> MovingToHarvest -> Harvesting -> Idle
//	Idle -> MovingToDeposit -> Depositing -> Idle
//	Idle -> Waiting -> Idle (no target found)
//
// The agent never owns its target. It holds a world handle and looks the
// target up again at every step; a lookup miss is a normal outcome.
type Agent struct {
	id       string
	cfg      *profession.Config
	env      *Env
	logger   *log.Logger
	carried  *ledger.Ledger
	stopFeed func()

	state     State
	position  grid.Point
	blacklist *targeting.Blacklist

	target    world.TargetID
	targetPos grid.Point
	action    profession.Action
	rule      profession.TargetRule

	ticker    *shared.Timer
	step      *shared.Timer
	query     pathfinding.QueryID
	querying  bool
	path      []grid.Point
	pathIndex int

	// epoch invalidates callbacks scheduled before the last cancellation
	epoch    uint64
	disposed bool

	// paced against simulation time, not the wall clock
	noTarget *rate.Limiter
}

// NewAgent creates an idle agent at pos. It does nothing until Start.
func NewAgent(id string, cfg *profession.Config, pos grid.Point, env *Env) *Agent {
	if cfg == nil {
		panic(fmt.Sprintf("worker: agent %s created without config", id))
	}
	env.validate()

	a := &Agent{
		id:        id,
		cfg:       cfg,
		env:       env,
		logger:    env.Logger.With("worker", id),
		state:     Idle,
		position:  pos,
		blacklist: targeting.NewBlacklist(env.Scheduler.Now(), env.Settings.BlacklistClearInterval),
		noTarget:  rate.NewLimiter(rate.Every(env.Settings.NoTargetLogInterval), 1),
	}
	a.carried = ledger.NewCarried(env.Catalog, cfg.CarryCapacity, ledger.WithLogger(env.Logger))
	a.stopFeed = a.carried.Subscribe(func(c ledger.Change) {
		env.Bus.Publish(events.ResourceChanged{
			Owner:    events.Owner{Type: events.OwnerWorker, Key: id},
			Kind:     c.Kind,
			Previous: c.Previous,
			New:      c.New,
			Delta:    c.Delta,
		})
	})
	return a
}

// Start begins the periodic tick
func (a *Agent) Start() {
	if a.ticker != nil || a.disposed {
		return
	}
	a.ticker = a.env.Scheduler.Every(a.env.Settings.TickInterval, a.onTick)
}

// Dispose stops every timer, cancels queries and releases any claim. The
// agent is inert afterwards.
func (a *Agent) Dispose() {
	if a.disposed {
		return
	}
	a.cancel()
	a.releaseTarget()
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
	a.stopFeed()
	a.disposed = true
}

// ForceIdle drops whatever the agent is doing and returns it to Idle
func (a *Agent) ForceIdle() {
	a.cancel()
	a.releaseTarget()
	a.setState(Idle)
}

// SetConfig swaps the profession. In-flight work is abandoned; carried
// resources are kept, and a smaller capacity only refuses further adds.
func (a *Agent) SetConfig(cfg *profession.Config) {
	if cfg == nil {
		panic(fmt.Sprintf("worker: nil config for agent %s", a.id))
	}
	a.cancel()
	a.releaseTarget()
	a.cfg = cfg
	a.carried.SetTotalCap(cfg.CarryCapacity)
	a.setState(Idle)
	a.logger.Info("profession changed", "profession", cfg.ID)
}

// Accessors

func (a *Agent) ID() string                      { return a.id }
func (a *Agent) Position() grid.Point            { return a.position }
func (a *Agent) Config() *profession.Config      { return a.cfg }
func (a *Agent) Profession() string              { return a.cfg.ID }
func (a *Agent) Blacklist() *targeting.Blacklist { return a.blacklist }
func (a *Agent) CarriedKinds() []resource.Kind   { return a.carried.Kinds() }
func (a *Agent) Carried() *ledger.Ledger         { return a.carried }
func (a *Agent) State() State                    { return a.state }
func (a *Agent) Target() world.TargetID          { return a.target }
func (a *Agent) IsDisposed() bool                { return a.disposed }

// Busy reports whether a path query or timed step is in flight
func (a *Agent) Busy() bool {
	return a.querying || a.step != nil
}

// RenderHint returns the presentation hint for the current state, honouring
// the profession's animation bindings
func (a *Agent) RenderHint() RenderHint {
	hint := RenderHintFor(a.state, a.carried.Serialize())
	if anim, ok := a.cfg.Animation(a.state.String()); ok {
		hint.Animation = anim
	}
	return hint
}

// Snapshot is a read-only copy of an agent's observable state
type Snapshot struct {
	ID         string
	Profession string
	State      State
	Position   grid.Point
	Target     world.TargetID
	Carried    map[resource.Kind]uint32
	Hint       RenderHint
}

// Snapshot copies the agent's observable state
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		ID:         a.id,
		Profession: a.cfg.ID,
		State:      a.state,
		Position:   a.position,
		Target:     a.target,
		Carried:    a.carried.Serialize(),
		Hint:       a.RenderHint(),
	}
}

func (a *Agent) onTick() {
	a.guard(func() {
		a.blacklist.ClearIfDue(a.env.Scheduler.Now())
		if a.state != Idle || a.Busy() {
			return
		}
		a.decide()
	})
}

func (a *Agent) decide() {
	var (
		target *targeting.Target
		ok     bool
		next   State
	)
	if a.carried.IsEmpty() {
		target, ok = a.env.Selector.SelectHarvestTarget(a)
		next = MovingToHarvest
	} else {
		target, ok = a.env.Selector.SelectDepositTarget(a)
		next = MovingToDeposit
	}
	if !ok {
		if a.noTarget.AllowN(a.env.Scheduler.Now(), 1) {
			a.logger.Debug("no target available", "carrying", !a.carried.IsEmpty())
		}
		a.wait()
		return
	}

	if target.ID.Type == world.TargetHarvestable {
		h, found := a.env.World.Harvestable(target.ID.Handle)
		if !found || !h.Claim(a.id) {
			a.blacklist.Add(target.ID)
			a.wait()
			return
		}
	}

	a.target = target.ID
	a.targetPos = target.Position
	a.action = target.Action
	a.rule = target.Rule
	a.logger.Debug("target selected", "target", target.ID, "reason", target.Reason)

	a.setState(next)
	a.requestPath(target.Position, false)
}

func (a *Agent) wait() {
	a.setState(Waiting)
	a.schedule(a.env.Settings.WaitCooldown, func() {
		a.setState(Idle)
	})
}

func (a *Agent) requestPath(dest grid.Point, fallback bool) {
	epoch := a.epoch
	a.querying = true
	a.query = a.env.Paths.Request(a.position, dest, func(path []grid.Point) {
		if epoch != a.epoch {
			return
		}
		a.querying = false
		a.guard(func() { a.onPath(path, fallback) })
	})
}

func (a *Agent) onPath(path []grid.Point, fallback bool) {
	if len(path) > 0 {
		a.path = path
		a.pathIndex = 0
		a.advance()
		return
	}
	if !fallback {
		if alt, ok := a.env.Paths.NearestWalkable(a.targetPos, a.env.Settings.FallbackRadius); ok {
			a.logger.Debug("retrying path to nearest walkable tile", "target", a.target, "tile", alt)
			a.requestPath(alt, true)
			return
		}
	}
	a.logger.Debug("target unreachable", "target", a.target)
	a.abandon(true)
}

// advance schedules arrival at the next waypoint, or finishes the walk
func (a *Agent) advance() {
	next := a.pathIndex + 1
	if next >= len(a.path) {
		a.path = nil
		a.arrive()
		return
	}
	to := a.path[next]
	delay := time.Duration(a.position.DistanceTo(to) / a.cfg.MoveSpeed * float64(time.Second))
	a.schedule(delay, func() {
		a.position = to
		a.pathIndex = next
		a.env.Bus.Publish(events.WorkerMoved{AgentID: a.id, Position: to})
		a.advance()
	})
}

func (a *Agent) arrive() {
	switch a.state {
	case MovingToHarvest:
		if a.action == profession.HarvestEntity {
			h, ok := a.env.World.Harvestable(a.target.Handle)
			if !ok || h.IsDestroyed() || h.ClaimedByOther(a.id) {
				a.abandon(true)
				return
			}
		} else if _, ok := a.env.World.Structure(a.target.Handle); !ok {
			a.abandon(true)
			return
		}
		a.setState(Harvesting)
		a.schedule(a.cfg.HarvestSpeed, a.hit)
	case MovingToDeposit:
		if _, ok := a.env.World.Structure(a.target.Handle); !ok {
			a.abandon(true)
			return
		}
		a.setState(Depositing)
		a.schedule(a.env.Settings.DepositDuration, a.deposit)
	default:
		a.setState(Idle)
	}
}

// hit runs one harvest cycle and reschedules itself while the target lasts
func (a *Agent) hit() {
	if a.action == profession.HarvestStructure {
		a.drawFromStructure()
		return
	}

	h, ok := a.env.World.Harvestable(a.target.Handle)
	if !ok || h.IsDestroyed() || h.ClaimedByOther(a.id) {
		a.abandon(true)
		return
	}
	if !a.roomFor(h) {
		// full hands: leave the source standing
		a.abandon(false)
		return
	}

	remaining := h.Hit(a.cfg.DamagePerHit)
	if y, ok := h.HitYield(); ok {
		a.carried.Add(y.Kind, y.Amount)
	}
	if remaining > 0 {
		a.schedule(a.cfg.HarvestSpeed, a.hit)
		return
	}

	for _, y := range h.RollDrops(a.env.Roll) {
		a.carried.Add(y.Kind, y.Amount)
	}
	id, kind := a.target, h.Kind()
	a.env.World.DestroyHarvestable(id.Handle)
	a.clearTarget()
	a.env.Bus.Publish(events.TargetDestroyed{TargetID: id, Kind: kind, By: a.id})
	a.logger.Debug("target destroyed", "target", id, "kind", kind)
	a.setState(Idle)
}

// roomFor reports whether another hit on h can land anything in the carried
// ledger: the hit-yield kind when there is one, otherwise any drop kind
func (a *Agent) roomFor(h *world.Harvestable) bool {
	if !a.carried.HasSpare() {
		return false
	}
	if y, ok := h.HitYield(); ok {
		return a.carried.Space(y.Kind) > 0
	}
	drops := h.Drops()
	if len(drops) == 0 {
		return true
	}
	for _, d := range drops {
		if a.carried.Space(d.Kind) > 0 {
			return true
		}
	}
	return false
}

func (a *Agent) drawFromStructure() {
	st, ok := a.env.World.Structure(a.target.Handle)
	if !ok {
		a.abandon(true)
		return
	}
	var taken uint32
	for _, k := range st.Storage().Kinds() {
		if !a.rule.AllowsResource(k) {
			continue
		}
		if space := a.carried.Space(k); space > 0 {
			taken += st.Storage().Transfer(k, space, a.carried)
		}
	}
	a.abandon(taken == 0)
}

func (a *Agent) deposit() {
	st, ok := a.env.World.Structure(a.target.Handle)
	if !ok {
		a.abandon(true)
		return
	}
	var moved uint32
	for _, k := range a.carried.Kinds() {
		moved += a.carried.Transfer(k, a.carried.Amount(k), st.Storage())
	}
	if moved > 0 {
		a.logger.Debug("deposited", "structure", st.Key(), "amount", moved, "left", a.carried.Total())
	}
	a.abandon(moved == 0)
}

// abandon drops the current target, optionally blacklisting it, and goes Idle
func (a *Agent) abandon(blacklist bool) {
	if blacklist && !a.target.IsZero() {
		a.blacklist.Add(a.target)
	}
	a.releaseTarget()
	a.setState(Idle)
}

func (a *Agent) schedule(d time.Duration, fn func()) {
	epoch := a.epoch
	a.step = a.env.Scheduler.After(d, func() {
		if epoch != a.epoch {
			return
		}
		a.step = nil
		a.guard(fn)
	})
}

// cancel stops the timed step and any pending path query
func (a *Agent) cancel() {
	a.epoch++
	if a.step != nil {
		a.step.Stop()
		a.step = nil
	}
	if a.querying {
		a.env.Paths.Cancel(a.query)
		a.querying = false
	}
	a.path = nil
	a.pathIndex = 0
}

func (a *Agent) releaseTarget() {
	if a.target.Type == world.TargetHarvestable {
		if h, ok := a.env.World.Harvestable(a.target.Handle); ok {
			h.Release(a.id)
		}
	}
	a.clearTarget()
}

func (a *Agent) clearTarget() {
	a.target = world.TargetID{}
	a.targetPos = grid.Point{}
	a.action = 0
	a.rule = profession.TargetRule{}
}

func (a *Agent) setState(next State) {
	if a.state == next {
		return
	}
	prev := a.state
	a.state = next
	a.env.Bus.Publish(events.WorkerStateChanged{
		AgentID:  a.id,
		From:     prev.String(),
		To:       next.String(),
		Position: a.position,
		Hint:     a.RenderHint().String(),
	})
}

// guard runs fn and turns a panic into a forced return to Idle with the held
// target blacklisted
func (a *Agent) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("worker step panicked", "state", a.state, "target", a.target, "panic", r)
			held := a.target
			a.cancel()
			if !held.IsZero() {
				a.blacklist.Add(held)
			}
			a.releaseTarget()
			a.setState(Idle)
		}
	}()
	fn()
}
