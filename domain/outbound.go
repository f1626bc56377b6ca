package domain

import "encoding/json"

type ValidationError struct {
	Message string `json:"message"`
}

type UpdateAck struct {
	Success  bool   `json:"success"`
	EntityID string `json:"entityId"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// Pair is encoded as a two element JSON array, [key, value].
type Pair[K any, V any] struct {
	Key   K
	Value V
}

func (p Pair[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Value})
}

func (p *Pair[K, V]) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Value)
}

type (
	DashboardSnapshot = []Pair[string, ActiveDeal]
	ControlSnapshot   = []Pair[string, string]
	QuotaSnapshot     = []Pair[string, Quota]
	ForecastSnapshot  = []Pair[string, []Forecast]
)
