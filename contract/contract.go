//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"salesroom/domain"
	"salesroom/domain/command"
	"salesroom/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes domain events off the critical path (persistence, enrichment).
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	Subscribe(connectionID string, room domain.Room, sink domain.ConnectionSink) error
	Unsubscribe(connectionID string) (domain.Room, bool)
	RoomOf(connectionID string) (domain.Room, bool)
	SinkOf(connectionID string) (domain.ConnectionSink, bool)
	MembersOf(room domain.Room) []string
	SinksFor(rooms ...domain.Room) []domain.ConnectionSink
	Count(room domain.Room) int
}

// IDispatcher applies commands. Only one goroutine may call Apply.
type IDispatcher interface {
	Apply(cmd command.Command) command.Outcome
}

// Persister is the durable write-behind of accepted mutations.
type Persister interface {
	SaveActiveDealEvent(ctx context.Context, e event.ActiveDealChanged) error
	SaveQuotaEvent(ctx context.Context, e event.QuotaChanged) error
	SaveSaleEvent(ctx context.Context, e event.SaleRegistered) error
	SaveForecastEvent(ctx context.Context, e event.ForecastChanged) error
	SaveQuotasReset(ctx context.Context, e event.QuotasReset) error
}

// CRMClient is the source of truth for deal identity and value.
type CRMClient interface {
	FetchDeal(ctx context.Context, id string) (domain.DealSnapshot, error)
	UpdateDealFields(ctx context.Context, id string, patch map[string]any) (domain.DealSnapshot, error)
}

// Enricher feeds CRM data back through the single writer.
type Enricher interface {
	EnrichDeal(ctx context.Context, dealID string, deal domain.DealSnapshot) error
}

// Submitter queues commands for the single writer.
type Submitter interface {
	Submit(ctx context.Context, cmd command.Command) error
}
