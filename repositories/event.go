package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/domain/event"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const keyPrefix = "evt"

type Kind string

const (
	KindDeal     Kind = "deal"
	KindQuota    Kind = "quota"
	KindSale     Kind = "sale"
	KindForecast Kind = "forecast"
	KindReset    Kind = "reset"
)

var Kinds = []Kind{KindDeal, KindQuota, KindSale, KindForecast, KindReset}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

type IEventRepository interface {
	contract.Persister
	List(kind Kind, cursor *string) ([]StoredEvent, *string, error)
}

// StoredEvent is one line of the durable history of accepted mutations.
type StoredEvent struct {
	ID       uuid.UUID       `json:"id"`
	Kind     Kind            `json:"kind"`
	Action   string          `json:"action"`
	EntityID string          `json:"entityId"`
	At       time.Time       `json:"at"`
	Payload  json.RawMessage `json:"payload"`
}

type salePayload struct {
	SalespersonID string       `json:"salespersonId"`
	DealID        string       `json:"dealId,omitempty"`
	Value         float64      `json:"value"`
	Quota         domain.Quota `json:"quota"`
}

type quotaPayload struct {
	Quota         domain.Quota `json:"quota"`
	RelatedDealID string       `json:"relatedDealId,omitempty"`
	DealValue     *float64     `json:"dealValue,omitempty"`
}

var _ IEventRepository = EventRepository{}

type EventRepository struct {
	db          *badger.DB
	log         *slog.Logger
	limitEvents *int
}

func NewEventRepository(db *badger.DB, log *slog.Logger, limitEvents *int) EventRepository {
	return EventRepository{db: db, log: log, limitEvents: limitEvents}
}

func (r EventRepository) SaveActiveDealEvent(ctx context.Context, e event.ActiveDealChanged) error {
	action := "set"
	switch {
	case e.Cleared:
		action = "cleared"
	case e.Enriched:
		action = "enriched"
	}
	return r.store(ctx, KindDeal, action, e.Record.DealID, e.At, e.Record)
}

func (r EventRepository) SaveQuotaEvent(ctx context.Context, e event.QuotaChanged) error {
	return r.store(ctx, KindQuota, "set", e.Record.SalespersonID, e.At,
		quotaPayload{Quota: e.Record, RelatedDealID: e.RelatedDealID, DealValue: e.DealValue})
}

func (r EventRepository) SaveSaleEvent(ctx context.Context, e event.SaleRegistered) error {
	return r.store(ctx, KindSale, "registered", e.SalespersonID, e.At,
		salePayload{SalespersonID: e.SalespersonID, DealID: e.DealID, Value: e.Value, Quota: e.Quota})
}

func (r EventRepository) SaveForecastEvent(ctx context.Context, e event.ForecastChanged) error {
	action := "upserted"
	if e.Removed {
		action = "removed"
	}
	return r.store(ctx, KindForecast, action, e.Record.ID, e.At, e.Record)
}

func (r EventRepository) SaveQuotasReset(ctx context.Context, e event.QuotasReset) error {
	return r.store(ctx, KindReset, "reset", e.EntityID(), e.At, struct{}{})
}

// store persists an event in BadgerDB.
// The key is formatted as "evt:{kind}:{timestamp_padded}:{entity_id}:{uuid}" to:
//  1. Keep each kind chronologically sorted using 19-digit zero padding.
//  2. Never overwrite two events of the same entity landing on the same nanosecond.
func (r EventRepository) store(ctx context.Context, kind Kind, action, entityID string, at time.Time, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	stored := StoredEvent{
		ID:       uuid.New(),
		Kind:     kind,
		Action:   action,
		EntityID: entityID,
		At:       at.UTC(),
		Payload:  raw,
	}
	bytes, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s:%s:%019d:%s:%s", keyPrefix, kind, stored.At.UnixNano(), entityID, stored.ID)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List returns the events of a kind, newest first, using a reverse prefix scan.
// The returned cursor resumes right after the last event of the page.
func (r EventRepository) List(kind Kind, cursor *string) ([]StoredEvent, *string, error) {
	var events []StoredEvent
	var lastKey string
	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("%s:%s:", keyPrefix, kind)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[len(prefixStr):]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limitEvents != nil && len(events) == *r.limitEvents {
				r.log.Debug(fmt.Sprintf("Maximum of %d events reached", *r.limitEvents))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				var stored StoredEvent
				if err := json.Unmarshal(value, &stored); err != nil {
					return err
				}
				events = append(events, stored)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return events, &lastKey, nil
}
