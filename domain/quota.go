package domain

import "time"

// Quota is the daily target of a salesperson and the progress toward it.
type Quota struct {
	SalespersonID    string    `json:"salespersonId"`
	SalespersonName  string    `json:"salespersonName"`
	TargetValue      float64   `json:"targetValue"`
	AccumulatedValue float64   `json:"accumulatedValue"`
	MeetingsCount    int       `json:"meetingsCount"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Progress returns accumulated/target, or false when no target is set.
func (q Quota) Progress() (float64, bool) {
	if q.TargetValue <= 0 {
		return 0, false
	}
	return q.AccumulatedValue / q.TargetValue, true
}
