package shopify

import (
	"sync"
	"time"
)

// Tracker remembers when a storefront rate limit was last hit. The
// orchestrator consults it to add a cooldown pause after subsequent writes,
// independent of the per-call retries.
type Tracker struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewTracker creates a rate-limit tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// MarkLimited records a rate-limit event.
func (t *Tracker) MarkLimited() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.now()
}

// RecentlyLimited reports whether a rate-limit event occurred within window.
func (t *Tracker) RecentlyLimited(window time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.IsZero() {
		return false
	}
	return t.now().Sub(t.last) < window
}
