package runtime

import "time"

const (
	DefaultCooldown  = time.Second
	DefaultRetention = 5 * time.Minute
)

// Cooldown suppresses repeated events for the same key inside a short window.
// It is owned by the dispatcher and not safe for concurrent use.
type Cooldown struct {
	window      time.Duration
	retention   time.Duration
	lastApplied map[string]time.Time
}

func NewCooldown(window, retention time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultCooldown
	}
	if retention < window {
		retention = DefaultRetention
	}
	return &Cooldown{window: window, retention: retention, lastApplied: make(map[string]time.Time)}
}

// Allow reports whether an event for key may be applied at now and records it if so.
// A suppressed event does not extend the window.
func (c *Cooldown) Allow(key string, now time.Time) bool {
	c.purge(now)
	if last, ok := c.lastApplied[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.lastApplied[key] = now
	return true
}

// Forget drops the entry of key so the next event for it is allowed immediately.
func (c *Cooldown) Forget(key string) {
	delete(c.lastApplied, key)
}

func (c *Cooldown) Len() int { return len(c.lastApplied) }

func (c *Cooldown) purge(now time.Time) {
	for key, last := range c.lastApplied {
		if now.Sub(last) > c.retention {
			delete(c.lastApplied, key)
		}
	}
}
