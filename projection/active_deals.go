// Package projection holds the in-memory state the sales room is built from.
// Stores are not safe for concurrent use: a single dispatcher owns them.
package projection

import (
	"salesroom/domain"
	"sort"
	"time"

	"github.com/samber/lo"
)

// ActiveDeals tracks the deal each salesperson is working right now.
// It holds no lock: the dispatcher is its only owner and applies one command at a time,
// which is what keeps "at most one active deal per salesperson" true between the
// removal of the old deal and the insertion of the new one.
type ActiveDeals struct {
	byDeal map[string]domain.ActiveDeal
}

// NewActiveDeals returns an empty store.
func NewActiveDeals() *ActiveDeals {
	return &ActiveDeals{byDeal: make(map[string]domain.ActiveDeal)}
}

// SetActive makes dealID the only active deal of salespersonID.
// Any other deal held by the same salesperson is removed first.
func (s *ActiveDeals) SetActive(salespersonID, dealID string, meta domain.DealMetadata, at time.Time) domain.ActiveDealSnapshot {
	for id, record := range s.byDeal {
		if record.SalespersonID == salespersonID && id != dealID {
			delete(s.byDeal, id)
		}
	}
	s.byDeal[dealID] = domain.ActiveDeal{
		DealID:        dealID,
		SalespersonID: salespersonID,
		IsActive:      true,
		UpdatedAt:     at,
		CustomerName:  meta.CustomerName,
		CustomerPhone: meta.CustomerPhone,
		Value:         meta.Value,
	}
	return s.Snapshot()
}

// Clear removes dealID. Clearing an unknown deal is a no-op.
func (s *ActiveDeals) Clear(dealID string) domain.ActiveDealSnapshot {
	delete(s.byDeal, dealID)
	return s.Snapshot()
}

// Get returns a copy of the record of dealID.
func (s *ActiveDeals) Get(dealID string) (domain.ActiveDeal, bool) {
	record, ok := s.byDeal[dealID]
	return record, ok
}

// Enrich fills the customer fields the client left empty with CRM data.
// It never overwrites client supplied values and reports whether anything changed.
func (s *ActiveDeals) Enrich(dealID string, deal domain.DealSnapshot) bool {
	record, ok := s.byDeal[dealID]
	if !ok {
		return false
	}
	changed := false
	if record.CustomerName == "" && deal.CustomerName != "" {
		record.CustomerName = deal.CustomerName
		changed = true
	}
	if record.CustomerPhone == "" && deal.CustomerPhone != "" {
		record.CustomerPhone = deal.CustomerPhone
		changed = true
	}
	if record.Value == nil && deal.Value != nil {
		record.Value = lo.ToPtr(*deal.Value)
		changed = true
	}
	if changed {
		s.byDeal[dealID] = record
	}
	return changed
}

// Records returns the active deals ordered by deal id.
func (s *ActiveDeals) Records() []domain.ActiveDeal {
	records := lo.Values(s.byDeal)
	sort.Slice(records, func(i, j int) bool { return records[i].DealID < records[j].DealID })
	return records
}

// BySalesperson maps each salesperson to their active deal.
func (s *ActiveDeals) BySalesperson() map[string]string {
	res := make(map[string]string, len(s.byDeal))
	for id, record := range s.byDeal {
		if record.IsActive {
			res[record.SalespersonID] = id
		}
	}
	return res
}

// Snapshot copies the records and the salesperson index in one pass, so both
// broadcasts built from it describe the same state.
func (s *ActiveDeals) Snapshot() domain.ActiveDealSnapshot {
	return domain.ActiveDealSnapshot{
		Deals:         s.Records(),
		BySalesperson: s.BySalesperson(),
	}
}
