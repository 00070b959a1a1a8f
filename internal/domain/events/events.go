package events

import (
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// Event is anything published on the Bus
type Event interface {
	EventName() string
}

// OwnerType says which kind of ledger a ResourceChanged came from
type OwnerType string

const (
	OwnerWorker    OwnerType = "worker"
	OwnerStructure OwnerType = "structure"
)

// Owner identifies the ledger behind a change
type Owner struct {
	Type OwnerType
	Key  string
}

// ResourceChanged is emitted for every applied ledger mutation
type ResourceChanged struct {
	Owner    Owner
	Kind     resource.Kind
	Previous uint32
	New      uint32
	Delta    int64
}

func (ResourceChanged) EventName() string { return "resource_changed" }

// WorkerStateChanged is emitted on every state transition
type WorkerStateChanged struct {
	AgentID  string
	From     string
	To       string
	Position grid.Point
	Hint     string
}

func (WorkerStateChanged) EventName() string { return "worker_state_changed" }

// WorkerMoved is emitted each time a worker reaches a waypoint
type WorkerMoved struct {
	AgentID  string
	Position grid.Point
}

func (WorkerMoved) EventName() string { return "worker_moved" }

// TargetDestroyed is emitted when a harvestable runs out of health
type TargetDestroyed struct {
	TargetID world.TargetID
	Kind     world.EntityKind
	By       string
}

func (TargetDestroyed) EventName() string { return "target_destroyed" }

// WorkerSpawned is emitted when the directory creates a worker
type WorkerSpawned struct {
	AgentID    string
	Profession string
	Position   grid.Point
}

func (WorkerSpawned) EventName() string { return "worker_spawned" }

// WorkerRemoved is emitted when the directory drops a worker
type WorkerRemoved struct {
	AgentID string
	Reason  string
}

func (WorkerRemoved) EventName() string { return "worker_removed" }

// GridRebuilt is emitted after the walkability grid is swapped
type GridRebuilt struct {
	Version uint64
	Reason  string
	Blocked int
}

func (GridRebuilt) EventName() string { return "grid_rebuilt" }
