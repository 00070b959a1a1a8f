package ledger

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// Change describes one applied mutation of a single entry
type Change struct {
	Kind     resource.Kind
	Previous uint32
	New      uint32
	Delta    int64
}

// Listener receives changes synchronously, in emission order
type Listener func(Change)

// BoundFunc returns the per-kind upper bound of a ledger
type BoundFunc func(resource.Kind) uint32

// Sink is anything resources can be transferred into
type Sink interface {
	Add(kind resource.Kind, amount uint32) uint32
}

// Ledger is a keyed, capacity-bounded quantity store.
//
// Mutations clamp to the bound and report the applied amount; they never fail
// and never overflow. Listeners run after the ledger lock is released so they
// may read the ledger back.
//
// Thread-Safety:
// Every mutation is serialized by an internal mutex. Multiple workers
// depositing into the same storage cannot interleave inside one operation.
//
// Invariants:
// - 0 <= Amount(k) <= Bound(k) for every kind
// - Total() <= total cap, when one is set
// - Unknown kinds panic
type Ledger struct {
	mu sync.Mutex

	catalog  *resource.Catalog
	entries  map[resource.Kind]uint32
	bound    BoundFunc
	totalCap uint32 // 0 means no aggregate cap

	listenersMu sync.Mutex
	listeners   map[int]Listener
	listenerSeq int
	logger      *log.Logger
}

// Option customizes a Ledger
type Option func(*Ledger)

// WithLogger sets the logger used to report listener panics
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTotalCap bounds the sum of all entries
func WithTotalCap(capacity uint32) Option {
	return func(l *Ledger) {
		l.totalCap = capacity
	}
}

// WithBound replaces the default stack-size bound
func WithBound(bound BoundFunc) Option {
	return func(l *Ledger) {
		if bound != nil {
			l.bound = bound
		}
	}
}

// New creates an empty ledger bounded per kind by the catalog stack size.
func New(catalog *resource.Catalog, opts ...Option) *Ledger {
	if catalog == nil {
		panic("ledger: nil catalog")
	}
	l := &Ledger{
		catalog:   catalog,
		entries:   make(map[resource.Kind]uint32),
		bound:     catalog.StackSize,
		listeners: make(map[int]Listener),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewCarried creates a worker inventory: each kind is bounded by its stack
// size and the sum of all kinds by capacity.
func NewCarried(catalog *resource.Catalog, capacity uint32, opts ...Option) *Ledger {
	opts = append([]Option{WithTotalCap(capacity)}, opts...)
	return New(catalog, opts...)
}

// Subscribe registers fn and returns a function that removes it
func (l *Ledger) Subscribe(fn Listener) func() {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()

	l.listenerSeq++
	id := l.listenerSeq
	l.listeners[id] = fn
	return func() {
		l.listenersMu.Lock()
		defer l.listenersMu.Unlock()
		delete(l.listeners, id)
	}
}

// Amount returns the current amount of kind
func (l *Ledger) Amount(kind resource.Kind) uint32 {
	l.catalog.MustKnow(kind)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[kind]
}

// Bound returns the per-kind upper bound
func (l *Ledger) Bound(kind resource.Kind) uint32 {
	l.catalog.MustKnow(kind)
	return l.bound(kind)
}

// TotalCap returns the aggregate cap, or 0 when there is none
func (l *Ledger) TotalCap() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCap
}

// SetTotalCap changes the aggregate cap. Existing amounts are kept even when
// they exceed the new cap; further adds are refused until the total drops.
func (l *Ledger) SetTotalCap(capacity uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalCap = capacity
}

// Total returns the sum of all entries
func (l *Ledger) Total() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalUnsafe()
}

// IsEmpty reports whether every entry is zero
func (l *Ledger) IsEmpty() bool {
	return l.Total() == 0
}

// Space returns how many more units of kind the ledger would accept
func (l *Ledger) Space(kind resource.Kind) uint32 {
	l.catalog.MustKnow(kind)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spaceUnsafe(kind)
}

// HasSpare reports whether at least one more unit of any kind would fit
// under the aggregate cap.
func (l *Ledger) HasSpare() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCap == 0 || l.totalUnsafe() < l.totalCap
}

// Kinds returns the kinds with a positive amount, sorted
func (l *Ledger) Kinds() []resource.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()

	kinds := make([]resource.Kind, 0, len(l.entries))
	for k, v := range l.entries {
		if v > 0 {
			kinds = append(kinds, k)
		}
	}
	return resource.SortKinds(kinds)
}

// Add stores up to amount units of kind and returns how many were accepted.
func (l *Ledger) Add(kind resource.Kind, amount uint32) uint32 {
	l.catalog.MustKnow(kind)
	if amount == 0 {
		return 0
	}

	l.mu.Lock()
	applied := amount
	if space := l.spaceUnsafe(kind); applied > space {
		applied = space
	}
	var change Change
	if applied > 0 {
		change = l.setUnsafe(kind, l.entries[kind]+applied)
	}
	l.mu.Unlock()

	if applied > 0 {
		l.emit(change)
	}
	return applied
}

// Remove takes up to amount units of kind and returns how many were removed.
func (l *Ledger) Remove(kind resource.Kind, amount uint32) uint32 {
	l.catalog.MustKnow(kind)
	if amount == 0 {
		return 0
	}

	l.mu.Lock()
	current := l.entries[kind]
	applied := amount
	if applied > current {
		applied = current
	}
	var change Change
	if applied > 0 {
		change = l.setUnsafe(kind, current-applied)
	}
	l.mu.Unlock()

	if applied > 0 {
		l.emit(change)
	}
	return applied
}

// CanAfford reports whether every line item of cost is held in full
func (l *Ledger) CanAfford(cost map[resource.Kind]uint32) bool {
	for k := range cost {
		l.catalog.MustKnow(k)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canAffordUnsafe(cost)
}

// Deduct removes every line item of cost, or nothing at all when any single
// item is short.
func (l *Ledger) Deduct(cost map[resource.Kind]uint32) bool {
	for k := range cost {
		l.catalog.MustKnow(k)
	}

	l.mu.Lock()
	if !l.canAffordUnsafe(cost) {
		l.mu.Unlock()
		return false
	}

	kinds := make([]resource.Kind, 0, len(cost))
	for k, v := range cost {
		if v > 0 {
			kinds = append(kinds, k)
		}
	}
	changes := make([]Change, 0, len(kinds))
	for _, k := range resource.SortKinds(kinds) {
		changes = append(changes, l.setUnsafe(k, l.entries[k]-cost[k]))
	}
	l.mu.Unlock()

	for _, c := range changes {
		l.emit(c)
	}
	return true
}

// Transfer moves up to amount units of kind into to. Whatever to does not
// accept is refunded, so the sum across both sides is conserved. Returns the
// amount that ended up in to.
func (l *Ledger) Transfer(kind resource.Kind, amount uint32, to Sink) uint32 {
	if to == nil {
		panic("ledger: transfer to nil sink")
	}

	removed := l.Remove(kind, amount)
	if removed == 0 {
		return 0
	}

	accepted := to.Add(kind, removed)
	if shortfall := removed - accepted; shortfall > 0 {
		if refunded := l.Add(kind, shortfall); refunded != shortfall {
			// Only reachable if a listener mutated this ledger mid-transfer.
			l.logger.Error("transfer refund clamped", "kind", kind, "shortfall", shortfall, "refunded", refunded)
		}
	}
	return accepted
}

// Serialize returns a copy of all positive entries
func (l *Ledger) Serialize() map[resource.Kind]uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[resource.Kind]uint32, len(l.entries))
	for k, v := range l.entries {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// Deserialize replaces the contents with snapshot, clamped to the current
// bounds. Kinds held before but absent from snapshot drop to zero. A change
// is emitted for every entry whose value differs, in kind order.
// Negative amounts and unknown kinds panic.
func (l *Ledger) Deserialize(snapshot map[resource.Kind]int) {
	for k, v := range snapshot {
		l.catalog.MustKnow(k)
		if v < 0 {
			panic(fmt.Sprintf("ledger: negative amount %d for %s", v, k))
		}
	}

	l.mu.Lock()
	seen := make(map[resource.Kind]struct{}, len(snapshot)+len(l.entries))
	kinds := make([]resource.Kind, 0, len(snapshot)+len(l.entries))
	for k := range snapshot {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			kinds = append(kinds, k)
		}
	}
	for k := range l.entries {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			kinds = append(kinds, k)
		}
	}
	resource.SortKinds(kinds)

	// Clear first so the aggregate cap is applied against the new contents.
	previous := make(map[resource.Kind]uint32, len(l.entries))
	for k, v := range l.entries {
		previous[k] = v
	}
	l.entries = make(map[resource.Kind]uint32, len(snapshot))

	var changes []Change
	for _, k := range kinds {
		target := uint32(0)
		if want, ok := snapshot[k]; ok {
			target = clampInt(want, l.bound(k))
			if l.totalCap > 0 {
				if room := l.totalCap - min(l.totalUnsafe(), l.totalCap); target > room {
					target = room
				}
			}
		}
		if target > 0 {
			l.entries[k] = target
		}
		if prev := previous[k]; prev != target {
			changes = append(changes, Change{Kind: k, Previous: prev, New: target, Delta: int64(target) - int64(prev)})
		}
	}
	l.mu.Unlock()

	for _, c := range changes {
		l.emit(c)
	}
}

// Unsafe helpers: caller holds l.mu

func (l *Ledger) totalUnsafe() uint32 {
	var sum uint32
	for _, v := range l.entries {
		sum += v
	}
	return sum
}

func (l *Ledger) spaceUnsafe(kind resource.Kind) uint32 {
	current := l.entries[kind]
	bound := l.bound(kind)
	if current >= bound {
		return 0
	}
	space := bound - current
	if l.totalCap > 0 {
		total := l.totalUnsafe()
		if total >= l.totalCap {
			return 0
		}
		if free := l.totalCap - total; space > free {
			space = free
		}
	}
	return space
}

func (l *Ledger) canAffordUnsafe(cost map[resource.Kind]uint32) bool {
	for k, v := range cost {
		if l.entries[k] < v {
			return false
		}
	}
	return true
}

func (l *Ledger) setUnsafe(kind resource.Kind, value uint32) Change {
	prev := l.entries[kind]
	if value == 0 {
		delete(l.entries, kind)
	} else {
		l.entries[kind] = value
	}
	return Change{Kind: kind, Previous: prev, New: value, Delta: int64(value) - int64(prev)}
}

func (l *Ledger) emit(change Change) {
	l.listenersMu.Lock()
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, l.listeners[id])
	}
	l.listenersMu.Unlock()

	for _, fn := range fns {
		l.notify(fn, change)
	}
}

func (l *Ledger) notify(fn Listener, change Change) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ledger listener panicked", "kind", change.Kind, "delta", change.Delta, "panic", r)
		}
	}()
	fn(change)
}

func clampInt(v int, bound uint32) uint32 {
	if v <= 0 {
		return 0
	}
	if uint64(v) > uint64(bound) {
		return bound
	}
	return uint32(v)
}
