package observability

import (
	"sync/atomic"
)

// Counters aggregates what the dispatcher and the delivery path did since start.
type Counters struct {
	Applied         atomic.Uint64
	Skipped         atomic.Uint64
	Rejected        atomic.Uint64
	Hydrations      atomic.Uint64
	Broadcasts      atomic.Uint64
	DroppedMessages atomic.Uint64
	LostEvents      atomic.Uint64
	SinkFailures    atomic.Uint64
}

func NewCounters() *Counters {
	return &Counters{}
}

// Snapshot returns the counters as log attributes.
func (c *Counters) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"applied":          c.Applied.Load(),
		"skipped":          c.Skipped.Load(),
		"rejected":         c.Rejected.Load(),
		"hydrations":       c.Hydrations.Load(),
		"broadcasts":       c.Broadcasts.Load(),
		"dropped_messages": c.DroppedMessages.Load(),
		"lost_events":      c.LostEvents.Load(),
		"sink_failures":    c.SinkFailures.Load(),
	}
}
