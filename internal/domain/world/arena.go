package world

import "fmt"

// Handle is a generational index into an Arena. A handle outlives the value
// it names: once the slot is freed, lookups with the old handle miss even if
// the slot is reused.
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether h was never issued
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

// Less orders handles by slot, then generation
func (h Handle) Less(other Handle) bool {
	if h.Index != other.Index {
		return h.Index < other.Index
	}
	return h.Gen < other.Gen
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%d", h.Index, h.Gen)
}

type slot[T any] struct {
	gen      uint32
	occupied bool
	value    T
}

// Arena stores values behind generational handles
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// Insert stores v and returns its handle
func (a *Arena[T]) Insert(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}

	s := &a.slots[idx]
	s.gen++
	s.occupied = true
	s.value = v
	a.live++
	return Handle{Index: idx, Gen: s.gen}
}

// Get returns the value for h, or false if h is stale or unknown
func (a *Arena[T]) Get(h Handle) (T, bool) {
	var zero T
	if int(h.Index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[h.Index]
	if !s.occupied || s.gen != h.Gen {
		return zero, false
	}
	return s.value, true
}

// Remove frees the slot for h. Returns false for stale handles.
func (a *Arena[T]) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	s := &a.slots[h.Index]
	var zero T
	s.value = zero
	s.occupied = false
	a.free = append(a.free, h.Index)
	a.live--
	return true
}

// Len returns the number of live values
func (a *Arena[T]) Len() int {
	return a.live
}

// Each visits live values in slot order until fn returns false
func (a *Arena[T]) Each(fn func(Handle, T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.occupied {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: s.gen}, s.value) {
			return
		}
	}
}
