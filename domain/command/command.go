// Package command defines everything the dispatcher can be asked to do.
// Commands are applied one at a time by a single writer.
package command

import (
	"salesroom/domain"
)

type Command interface {
	Name() string
}

// Join registers a connection in a room and hydrates it.
type Join struct {
	ConnectionID string
	Room         domain.Room
	Sink         domain.ConnectionSink
}

func (Join) Name() string { return "join" }

// Leave removes a connection from its room.
type Leave struct {
	ConnectionID string
}

func (Leave) Name() string { return "leave" }

// Update carries a client mutation.
type Update struct {
	ConnectionID string
	Event        domain.Inbound
}

func (u Update) Name() string {
	if u.Event == nil {
		return "update"
	}
	return string(u.Event.EventType())
}

// Tick recomputes alerts for the dashboard room.
type Tick struct{}

func (Tick) Name() string { return "tick" }

// Enrich merges CRM data into a still-active deal.
type Enrich struct {
	DealID string
	Deal   domain.DealSnapshot
}

func (Enrich) Name() string { return "enrich" }

// ResetQuotas is the end-of-day reset.
type ResetQuotas struct{}

func (ResetQuotas) Name() string { return "reset-quotas" }

type Status string

const (
	Applied  Status = "applied"
	Skipped  Status = "skipped"
	Rejected Status = "rejected"
	Ignored  Status = "ignored"
)

// Outcome describes what the dispatcher did with a command.
type Outcome struct {
	Status   Status
	EntityID string
	Err      error
}

// Request pairs a command with an optional reply channel.
// Reply must be buffered: the writer never waits on it.
type Request struct {
	Command Command
	Reply   chan<- Outcome
}
