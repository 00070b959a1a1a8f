package ledger

import (
	"sync"

	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// Storage is a building-side ledger bounded by a per-kind capacity table.
// Kinds missing from the table have capacity 0 and are never accepted.
type Storage struct {
	*Ledger

	capMu    sync.RWMutex
	capacity map[resource.Kind]uint32
}

// NewStorage creates an empty storage container with the given capacities
func NewStorage(catalog *resource.Catalog, capacity map[resource.Kind]uint32, opts ...Option) *Storage {
	s := &Storage{capacity: make(map[resource.Kind]uint32, len(capacity))}
	for k, v := range capacity {
		catalog.MustKnow(k)
		s.capacity[k] = v
	}
	opts = append(opts, WithBound(s.Capacity))
	s.Ledger = New(catalog, opts...)
	return s
}

// Capacity returns the configured capacity for kind
func (s *Storage) Capacity(kind resource.Kind) uint32 {
	s.capMu.RLock()
	defer s.capMu.RUnlock()
	return s.capacity[kind]
}

// Capacities returns a copy of the capacity table
func (s *Storage) Capacities() map[resource.Kind]uint32 {
	s.capMu.RLock()
	defer s.capMu.RUnlock()

	out := make(map[resource.Kind]uint32, len(s.capacity))
	for k, v := range s.capacity {
		out[k] = v
	}
	return out
}

// FreeSpace returns how many more units of kind fit
func (s *Storage) FreeSpace(kind resource.Kind) uint32 {
	return s.Space(kind)
}

// CanAccept reports whether at least one unit of kind fits
func (s *Storage) CanAccept(kind resource.Kind) bool {
	return s.FreeSpace(kind) > 0
}

// AcceptsAny reports whether at least one of kinds fits
func (s *Storage) AcceptsAny(kinds []resource.Kind) bool {
	for _, k := range kinds {
		if s.CanAccept(k) {
			return true
		}
	}
	return false
}

// HoldsAny reports whether at least one unit of any of kinds is stored
func (s *Storage) HoldsAny(kinds resource.KindSet) bool {
	for _, k := range s.Kinds() {
		if kinds.Contains(k) {
			return true
		}
	}
	return false
}
