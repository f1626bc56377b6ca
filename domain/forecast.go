package domain

import (
	"sort"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	ShortTimeLayout = "15:04"
)

// ParseClock accepts a time of day as HH:MM:SS or HH:MM.
func ParseClock(value string) (time.Time, bool) {
	for _, layout := range []string{TimeLayout, ShortTimeLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Forecast is a scheduled future call with an expected value.
type Forecast struct {
	ID            string    `json:"id" validate:"required"`
	SalespersonID string    `json:"salespersonId" validate:"required"`
	CustomerName  string    `json:"customerName" validate:"required"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	ScheduledDate string    `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime string    `json:"scheduledTime,omitempty" validate:"omitempty,clocktime"`
	Value         float64   `json:"value" validate:"gte=0"`
	Notes         string    `json:"notes"`
	FirstCallDate string    `json:"firstCallDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RelatedDealID string    `json:"relatedDealId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ScheduledAt resolves the scheduled date and time in loc.
// It returns false when the forecast has no time or cannot be parsed.
func (f Forecast) ScheduledAt(loc *time.Location) (time.Time, bool) {
	if f.ScheduledTime == "" {
		return time.Time{}, false
	}
	clock, ok := ParseClock(f.ScheduledTime)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(DateLayout, f.ScheduledDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc), true
}

// Normalized rewrites a parseable ScheduledTime as HH:MM:SS so that string order is time order.
func (f Forecast) Normalized() Forecast {
	if clock, ok := ParseClock(f.ScheduledTime); ok {
		f.ScheduledTime = clock.Format(TimeLayout)
	}
	return f
}

// SortForDisplay orders forecasts by scheduled time, records without a time last.
// The sort is stable so equal times keep their insertion order.
func SortForDisplay(forecasts []Forecast) {
	sort.SliceStable(forecasts, func(i, j int) bool {
		a, b := forecasts[i].ScheduledTime, forecasts[j].ScheduledTime
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
}
