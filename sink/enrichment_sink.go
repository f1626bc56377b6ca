package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"salesroom/contract"
	"salesroom/domain/event"
	salesErrors "salesroom/errors"
)

// EnrichmentSink talks to the CRM off the critical path.
// Active deals missing customer data are fetched and merged back through the Enricher;
// quota updates tied to a deal push the deal value to the CRM.
type EnrichmentSink struct {
	crm      contract.CRMClient
	enricher contract.Enricher
	log      *slog.Logger
}

func NewEnrichmentSink(crm contract.CRMClient, enricher contract.Enricher, log *slog.Logger) EnrichmentSink {
	return EnrichmentSink{crm: crm, enricher: enricher, log: log}
}

func (s EnrichmentSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ActiveDealChanged:
		if !evt.NeedsEnrichment() {
			return nil
		}
		return s.enrich(ctx, evt.Record.DealID)
	case event.QuotaChanged:
		if evt.RelatedDealID == "" || evt.DealValue == nil {
			return nil
		}
		if _, err := s.crm.UpdateDealFields(ctx, evt.RelatedDealID, map[string]any{"value": *evt.DealValue}); err != nil {
			return fmt.Errorf("updating CRM deal %s: %w", evt.RelatedDealID, err)
		}
		return nil
	default:
		return nil
	}
}

func (s EnrichmentSink) enrich(ctx context.Context, dealID string) error {
	deal, err := s.crm.FetchDeal(ctx, dealID)
	if errors.Is(err, salesErrors.ErrDealNotFound) {
		s.log.Debug("Deal unknown to CRM, nothing to enrich", "deal_id", dealID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching CRM deal %s: %w", dealID, err)
	}
	return s.enricher.EnrichDeal(ctx, dealID, deal)
}
