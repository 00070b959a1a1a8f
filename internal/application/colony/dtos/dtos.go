package dtos

import (
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/world"
	"github.com/andrescamacho/colony-go/internal/domain/worker"
)

// WorkerDTO is a worker as seen from outside the simulation loop
type WorkerDTO struct {
	ID         string            `json:"id"`
	Profession string            `json:"profession"`
	State      string            `json:"state"`
	X          int               `json:"x"`
	Y          int               `json:"y"`
	Target     string            `json:"target,omitempty"`
	Carried    map[string]uint32 `json:"carried"`
	Hint       string            `json:"hint"`
	AssignedTo string            `json:"assigned_to,omitempty"`
}

// StructureDTO is a structure with its storage levels
type StructureDTO struct {
	Key        string            `json:"key"`
	Kind       string            `json:"kind"`
	X          int               `json:"x"`
	Y          int               `json:"y"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Stored     map[string]uint32 `json:"stored"`
	Capacity   map[string]uint32 `json:"capacity"`
	AssignedTo string            `json:"assigned_to,omitempty"`
}

// StatusDTO summarizes the colony
type StatusDTO struct {
	Lifecycle   string            `json:"lifecycle"`
	Uptime      time.Duration     `json:"uptime"`
	Ticks       uint64            `json:"ticks"`
	Workers     int               `json:"workers"`
	Structures  int               `json:"structures"`
	GridVersion uint64            `json:"grid_version"`
	Assignments int               `json:"assignments"`
	PendingPath int               `json:"pending_paths"`
	Timers      int               `json:"timers"`
	Stock       map[string]uint32 `json:"stock"`
}

// NewWorkerDTO converts an agent snapshot
func NewWorkerDTO(s worker.Snapshot, assignedTo string) WorkerDTO {
	dto := WorkerDTO{
		ID:         s.ID,
		Profession: s.Profession,
		State:      s.State.String(),
		X:          s.Position.X,
		Y:          s.Position.Y,
		Carried:    Amounts(s.Carried),
		Hint:       s.Hint.String(),
		AssignedTo: assignedTo,
	}
	if !s.Target.IsZero() {
		dto.Target = s.Target.String()
	}
	return dto
}

// NewStructureDTO converts a structure
func NewStructureDTO(st *world.Structure, assignedTo string) StructureDTO {
	fp := st.Footprint()
	return StructureDTO{
		Key:        st.Key(),
		Kind:       string(st.Kind()),
		X:          fp.X,
		Y:          fp.Y,
		Width:      fp.Width,
		Height:     fp.Height,
		Stored:     Amounts(st.Storage().Serialize()),
		Capacity:   Amounts(st.Storage().Capacities()),
		AssignedTo: assignedTo,
	}
}

// Amounts converts a kind-keyed map to plain strings for transport
func Amounts(in map[resource.Kind]uint32) map[string]uint32 {
	out := make(map[string]uint32, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

// Kinds converts a transport map back to resource kinds
func Kinds(in map[string]uint32) map[resource.Kind]uint32 {
	if in == nil {
		return nil
	}
	out := make(map[resource.Kind]uint32, len(in))
	for k, v := range in {
		out[resource.Kind(k)] = v
	}
	return out
}
