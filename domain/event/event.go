// Package event defines the facts emitted after an accepted mutation.
// They feed persistence and enrichment, never the real-time broadcast.
package event

import (
	"salesroom/domain"
	"time"
)

type DomainEvent interface {
	EntityID() string
	OccurredAt() time.Time
}

type ActiveDealChanged struct {
	Record   domain.ActiveDeal
	Cleared  bool
	Enriched bool
	At       time.Time
}

func (e ActiveDealChanged) EntityID() string      { return e.Record.DealID }
func (e ActiveDealChanged) OccurredAt() time.Time { return e.At }

// NeedsEnrichment reports whether the CRM could fill in missing customer fields.
func (e ActiveDealChanged) NeedsEnrichment() bool {
	if e.Cleared || e.Enriched {
		return false
	}
	r := e.Record
	return r.CustomerName == "" || r.CustomerPhone == "" || r.Value == nil
}

type QuotaChanged struct {
	Record        domain.Quota
	RelatedDealID string
	DealValue     *float64
	At            time.Time
}

func (e QuotaChanged) EntityID() string      { return e.Record.SalespersonID }
func (e QuotaChanged) OccurredAt() time.Time { return e.At }

type SaleRegistered struct {
	SalespersonID string
	DealID        string
	Value         float64
	Quota         domain.Quota
	At            time.Time
}

func (e SaleRegistered) EntityID() string      { return e.SalespersonID }
func (e SaleRegistered) OccurredAt() time.Time { return e.At }

type ForecastChanged struct {
	Record  domain.Forecast
	Removed bool
	At      time.Time
}

func (e ForecastChanged) EntityID() string      { return e.Record.ID }
func (e ForecastChanged) OccurredAt() time.Time { return e.At }

type QuotasReset struct {
	At time.Time
}

func (e QuotasReset) EntityID() string      { return "quotas" }
func (e QuotasReset) OccurredAt() time.Time { return e.At }
