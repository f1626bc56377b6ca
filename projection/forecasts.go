package projection

import (
	"salesroom/domain"
	"time"
)

// Forecasts holds the scheduled calls of each salesperson.
// Storage order is insertion order; display order is applied on read so that an upsert
// which changes the time of a call never has to move it. Like the other stores it is
// owned by the dispatcher and holds no lock.
type Forecasts struct {
	bySalesperson map[string][]domain.Forecast
}

// NewForecasts returns an empty store.
func NewForecasts() *Forecasts {
	return &Forecasts{bySalesperson: make(map[string][]domain.Forecast)}
}

// Upsert replaces the forecast with the same id in the salesperson's collection, or appends it.
func (s *Forecasts) Upsert(f domain.Forecast, at time.Time) domain.Forecast {
	f.UpdatedAt = at
	list := s.bySalesperson[f.SalespersonID]
	for i := range list {
		if list[i].ID == f.ID {
			if f.CreatedAt.IsZero() {
				f.CreatedAt = list[i].CreatedAt
			}
			list[i] = f
			return f
		}
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = at
	}
	s.bySalesperson[f.SalespersonID] = append(list, f)
	return f
}

// Remove deletes the forecast and reports whether it existed.
func (s *Forecasts) Remove(id, salespersonID string) (domain.Forecast, bool) {
	list := s.bySalesperson[salespersonID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		removed := list[i]
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(s.bySalesperson, salespersonID)
		} else {
			s.bySalesperson[salespersonID] = list
		}
		return removed, true
	}
	return domain.Forecast{}, false
}

// BySalesperson returns a copy of the salesperson's forecasts in storage order.
func (s *Forecasts) BySalesperson(salespersonID string) []domain.Forecast {
	list := s.bySalesperson[salespersonID]
	res := make([]domain.Forecast, len(list))
	copy(res, list)
	return res
}

// All returns a copy of every collection in storage order.
func (s *Forecasts) All() map[string][]domain.Forecast {
	res := make(map[string][]domain.Forecast, len(s.bySalesperson))
	for id := range s.bySalesperson {
		res[id] = s.BySalesperson(id)
	}
	return res
}

// Clear drops every forecast.
func (s *Forecasts) Clear() {
	s.bySalesperson = make(map[string][]domain.Forecast)
}
