package domain

import (
	"encoding/json"
	"fmt"
)

type EventType string

// Client to server.
const (
	JoinDashboard   EventType = "join-dashboard"
	JoinControl     EventType = "join-control"
	SetActiveDeal   EventType = "set-active-deal"
	ClearActiveDeal EventType = "clear-active-deal"
	SetQuota        EventType = "set-quota"
	UpsertForecast  EventType = "upsert-forecast"
	RemoveForecast  EventType = "remove-forecast"
	RegisterSale    EventType = "register-sale"
	RegisterMeeting EventType = "register-meeting"
)

// Server to client.
const (
	DashboardSnapshotEvent EventType = "dashboard-snapshot"
	ControlSnapshotEvent   EventType = "control-snapshot"
	QuotaSnapshotEvent     EventType = "quota-snapshot"
	ForecastSnapshotEvent  EventType = "forecast-snapshot"
	AlertTickEvent         EventType = "alert-tick"
	ValidationErrorEvent   EventType = "validation-error"
	UpdateAckEvent         EventType = "update-ack"
)

// Envelope is the unit exchanged on the real-time channel in both directions.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes payload once so it can be shared by every recipient.
func NewEnvelope(t EventType, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s: %w", t, err)
	}
	return Envelope{Type: t, Payload: raw}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}
