package targeting

import (
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/world"
)

// DefaultClearInterval is how often a blacklist is emptied
const DefaultClearInterval = 30 * time.Second

// Blacklist is a per-worker set of targets that recently failed. The whole
// set is emptied once the clear interval has passed since the last clear;
// entries have no individual expiry, so a target blacklisted just before a
// clear becomes eligible again almost immediately.
type Blacklist struct {
	entries     map[world.TargetID]struct{}
	lastCleared time.Time
	interval    time.Duration
}

// NewBlacklist creates an empty blacklist whose clear window starts at now
func NewBlacklist(now time.Time, interval time.Duration) *Blacklist {
	if interval <= 0 {
		interval = DefaultClearInterval
	}
	return &Blacklist{
		entries:     make(map[world.TargetID]struct{}),
		lastCleared: now,
		interval:    interval,
	}
}

// Add excludes id from selection until the next clear
func (b *Blacklist) Add(id world.TargetID) {
	if id.IsZero() {
		return
	}
	b.entries[id] = struct{}{}
}

// Contains reports whether id is excluded
func (b *Blacklist) Contains(id world.TargetID) bool {
	_, ok := b.entries[id]
	return ok
}

// Len returns the number of excluded targets
func (b *Blacklist) Len() int { return len(b.entries) }

// LastCleared returns when the set was last emptied
func (b *Blacklist) LastCleared() time.Time { return b.lastCleared }

// ClearIfDue empties the set when the interval has elapsed. Returns true if
// it cleared.
func (b *Blacklist) ClearIfDue(now time.Time) bool {
	if now.Sub(b.lastCleared) < b.interval {
		return false
	}
	b.Clear(now)
	return true
}

// Clear empties the set and restarts the window
func (b *Blacklist) Clear(now time.Time) {
	b.entries = make(map[world.TargetID]struct{})
	b.lastCleared = now
}
