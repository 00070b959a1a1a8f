package events

import (
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Handler consumes published events
type Handler func(Event)

// Publisher is the write side of the bus
type Publisher interface {
	Publish(e Event)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// Bus delivers events synchronously to every subscriber, in subscription
// order, on the publisher's goroutine. Events published from inside a handler
// are delivered after the current event finishes, so every subscriber sees
// the same global order.
type Bus struct {
	mu       sync.Mutex
	handlers map[int]Handler
	seq      int

	queue      []Event
	delivering bool

	logger *log.Logger
}

// NewBus creates an empty bus; a nil logger discards
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{handlers: make(map[int]Handler), logger: logger}
}

// Subscribe registers h and returns its unsubscribe function
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := b.seq
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers e to all current subscribers. A panicking handler is
// logged and skipped; the remaining handlers still run.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.delivering {
		b.mu.Unlock()
		return
	}
	b.delivering = true
	b.mu.Unlock()

	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.delivering = false
			b.mu.Unlock()
			return
		}
		next := b.queue[0]
		b.queue = b.queue[1:]
		handlers := b.snapshotUnsafe()
		b.mu.Unlock()

		for _, h := range handlers {
			b.deliver(h, next)
		}
	}
}

func (b *Bus) snapshotUnsafe() []Handler {
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Handler, len(ids))
	for i, id := range ids {
		out[i] = b.handlers[id]
	}
	return out
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", e.EventName(), "panic", r)
		}
	}()
	h(e)
}

// Recorder collects published events; handy in tests and for draining a tick
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Record appends e
func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset discards everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
