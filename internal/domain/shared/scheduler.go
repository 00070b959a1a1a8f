package shared

import (
	"container/heap"
	"time"
)

// Timer is a handle to a callback registered with a Scheduler.
type Timer struct {
	due      time.Time
	seq      uint64
	interval time.Duration
	fn       func()
	index    int
	stopped  bool
	sched    *Scheduler
}

// Stop cancels the timer. It reports whether the timer was still pending.
// Stopping from inside the timer's own callback prevents any further repeats.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped {
		return false
	}
	t.stopped = true
	if t.index >= 0 {
		heap.Remove(&t.sched.timers, t.index)
		return true
	}
	// Periodic timer currently running its callback; it is already off the heap.
	return t.interval > 0
}

// Active reports whether the timer will still fire.
func (t *Timer) Active() bool {
	return t != nil && !t.stopped
}

// Due returns when the timer fires next.
func (t *Timer) Due() time.Time {
	return t.due
}

// Scheduler is a cooperative, single-threaded timer queue.
//
// Callbacks never run on their own goroutine: they fire only from RunDue, in
// due-time order with ties broken by registration order. This keeps every
// state-machine step on the caller's goroutine (the simulation loop).
//
// Invariants:
// - A stopped timer never fires
// - Timers due at the same instant fire in the order they were scheduled
type Scheduler struct {
	clock  Clock
	timers timerHeap
	seq    uint64
}

// NewScheduler creates a scheduler reading time from clock.
// If clock is nil, uses RealClock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = NewRealClock()
	}
	s := &Scheduler{clock: clock}
	heap.Init(&s.timers)
	return s
}

// Clock returns the scheduler's time source
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Now is shorthand for the scheduler clock's current time
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After schedules fn to run once, d after now.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	return s.push(s.clock.Now().Add(d), 0, fn)
}

// Every schedules fn to run every interval, first firing one interval from now.
func (s *Scheduler) Every(interval time.Duration, fn func()) *Timer {
	if interval <= 0 {
		panic("scheduler: periodic interval must be positive")
	}
	return s.push(s.clock.Now().Add(interval), interval, fn)
}

func (s *Scheduler) push(due time.Time, interval time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{
		due:      due,
		seq:      s.seq,
		interval: interval,
		fn:       fn,
		index:    -1,
		sched:    s,
	}
	heap.Push(&s.timers, t)
	return t
}

// RunDue fires every timer whose due time is at or before the clock's current
// time and returns how many callbacks ran. Periodic timers that fell behind
// catch up within the same call.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()
	fired := 0

	for s.timers.Len() > 0 {
		next := s.timers[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.timers)

		if next.interval > 0 {
			next.due = next.due.Add(next.interval)
			s.seq++
			next.seq = s.seq
		}

		next.fn()
		fired++

		if next.interval > 0 && !next.stopped {
			heap.Push(&s.timers, next)
		} else {
			next.stopped = true
		}
	}

	return fired
}

// Pending returns the number of timers still queued
func (s *Scheduler) Pending() int {
	return s.timers.Len()
}

// timerHeap implements heap.Interface ordered by due time, then sequence
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if !h[i].due.Equal(h[j].due) {
		return h[i].due.Before(h[j].due)
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
