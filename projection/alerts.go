package projection

import (
	"salesroom/domain"
	"sort"
	"time"
)

const DefaultAlertWindow = 15 * time.Minute

// AlertPolicy decides which forecasts are urgent.
// Location defines "today" and the wall clock the scheduled times are read in; the
// zero policy uses a 15 minute window in the local zone.
type AlertPolicy struct {
	Window   time.Duration
	Location *time.Location
}

func (p AlertPolicy) withDefaults() AlertPolicy {
	if p.Window <= 0 {
		p.Window = DefaultAlertWindow
	}
	if p.Location == nil {
		p.Location = time.Local
	}
	return p
}

// ComputeAlerts picks, per salesperson, the earliest forecast scheduled today whose
// start is strictly after now and strictly less than the window away.
// now is truncated to the second so evaluations within the same second agree.
// Salespeople without a qualifying forecast are omitted.
func ComputeAlerts(now time.Time, forecasts map[string][]domain.Forecast, policy AlertPolicy) []domain.Alert {
	policy = policy.withDefaults()
	now = now.In(policy.Location).Truncate(time.Second)
	today := now.Format(domain.DateLayout)

	var alerts []domain.Alert
	for salespersonID, list := range forecasts {
		var (
			best      domain.Forecast
			bestDelta time.Duration
			found     bool
		)
		for _, f := range list {
			if f.ScheduledDate != today {
				continue
			}
			at, ok := f.ScheduledAt(policy.Location)
			if !ok {
				continue
			}
			delta := at.Sub(now)
			if delta <= 0 || delta >= policy.Window {
				continue
			}
			if !found || delta < bestDelta {
				best, bestDelta, found = f, delta, true
			}
		}
		if !found {
			continue
		}
		seconds := int(bestDelta / time.Second)
		alerts = append(alerts, domain.Alert{
			SalespersonID:    salespersonID,
			Forecast:         best,
			CountdownMinutes: seconds / 60,
			CountdownSeconds: seconds % 60,
		})
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].SalespersonID < alerts[j].SalespersonID })
	return alerts
}
