package projection

import (
	"salesroom/domain"
	"sort"
	"time"

	"github.com/samber/lo"
)

// Quotas holds the daily target and progress of each salesperson.
// accumulatedValue only moves through SetQuota with an explicit value, AddSale and Clear;
// a new target alone never resets progress. Owned by the dispatcher, no lock.
type Quotas struct {
	bySalesperson map[string]domain.Quota
}

// NewQuotas returns an empty store.
func NewQuotas() *Quotas {
	return &Quotas{bySalesperson: make(map[string]domain.Quota)}
}

// SetQuota creates or updates a quota. A nil accumulated keeps the previous value.
func (s *Quotas) SetQuota(salespersonID, name string, target float64, accumulated *float64, at time.Time) domain.Quota {
	q := s.bySalesperson[salespersonID]
	q.SalespersonID = salespersonID
	q.SalespersonName = name
	q.TargetValue = target
	if accumulated != nil {
		q.AccumulatedValue = *accumulated
	}
	q.UpdatedAt = at
	s.bySalesperson[salespersonID] = q
	return q
}

// IncrementMeetings bumps the meeting counter, creating a zeroed quota if needed.
func (s *Quotas) IncrementMeetings(salespersonID string, at time.Time) domain.Quota {
	q := s.getOrZero(salespersonID)
	q.MeetingsCount++
	q.UpdatedAt = at
	s.bySalesperson[salespersonID] = q
	return q
}

// AddSale adds value to the accumulated amount. name only fills an empty name.
func (s *Quotas) AddSale(salespersonID, name string, value float64, at time.Time) domain.Quota {
	q := s.getOrZero(salespersonID)
	if q.SalespersonName == "" {
		q.SalespersonName = name
	}
	q.AccumulatedValue += value
	q.UpdatedAt = at
	s.bySalesperson[salespersonID] = q
	return q
}

// Get returns the quota of salespersonID.
func (s *Quotas) Get(salespersonID string) (domain.Quota, bool) {
	q, ok := s.bySalesperson[salespersonID]
	return q, ok
}

// All returns every quota ordered by salesperson id.
func (s *Quotas) All() []domain.Quota {
	quotas := lo.Values(s.bySalesperson)
	sort.Slice(quotas, func(i, j int) bool { return quotas[i].SalespersonID < quotas[j].SalespersonID })
	return quotas
}

// Clear is the end-of-day reset.
func (s *Quotas) Clear() {
	s.bySalesperson = make(map[string]domain.Quota)
}

func (s *Quotas) getOrZero(salespersonID string) domain.Quota {
	if q, ok := s.bySalesperson[salespersonID]; ok {
		return q
	}
	return domain.Quota{SalespersonID: salespersonID}
}
