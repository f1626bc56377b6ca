package sink

import (
	"context"
	"fmt"
	"log/slog"
	"salesroom/contract"
	"salesroom/domain/event"
)

// DiskSink is the write-behind persistence of accepted mutations.
type DiskSink struct {
	persister contract.Persister
	log       *slog.Logger
}

func NewDiskSink(persister contract.Persister, log *slog.Logger) DiskSink {
	return DiskSink{persister: persister, log: log}
}

func (d DiskSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ActiveDealChanged:
		return d.persister.SaveActiveDealEvent(ctx, evt)
	case event.QuotaChanged:
		return d.persister.SaveQuotaEvent(ctx, evt)
	case event.SaleRegistered:
		return d.persister.SaveSaleEvent(ctx, evt)
	case event.ForecastChanged:
		return d.persister.SaveForecastEvent(ctx, evt)
	case event.QuotasReset:
		return d.persister.SaveQuotasReset(ctx, evt)
	default:
		d.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
		return nil
	}
}
