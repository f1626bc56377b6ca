// Package domain contains core concepts of the sales room.
// This file defines broadcast rooms and the per-connection delivery contract.
package domain

import "fmt"

type Room string

const (
	DashboardRoom Room = "dashboard"
	ControlRoom   Room = "control"
)

func (r Room) Valid() bool {
	return r == DashboardRoom || r == ControlRoom
}

func (r Room) String() string { return string(r) }

// ParseRoom maps a join event type onto its room.
func ParseRoom(t EventType) (Room, error) {
	switch t {
	case JoinDashboard:
		return DashboardRoom, nil
	case JoinControl:
		return ControlRoom, nil
	default:
		return "", fmt.Errorf("%q is not a join event", t)
	}
}

// ConnectionSink receives the envelopes addressed to a single connection.
// Deliver must never block; it reports false when the envelope was dropped.
type ConnectionSink interface {
	Deliver(env Envelope) bool
}
