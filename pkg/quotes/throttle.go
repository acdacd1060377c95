package quotes

import (
	"sync"
	"time"
)

// refreshThrottle tracks the last on-demand refresh per asset so bursts of
// newly added holdings cannot hammer the upstream feed.
type refreshThrottle struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func newRefreshThrottle(window time.Duration) *refreshThrottle {
	return &refreshThrottle{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// inCooldown reports whether the asset was refreshed on demand within the
// cooldown window.
func (t *refreshThrottle) inCooldown(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.last[id]
	if !ok {
		return false
	}
	return t.now().Sub(at) < t.window
}

// mark records the current time for the asset. Called after every on-demand
// attempt, success or failure, so a down upstream is not retried in a hot loop.
func (t *refreshThrottle) mark(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[id] = t.now()
}
