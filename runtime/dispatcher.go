package runtime

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"salesroom/clock"
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/domain/command"
	"salesroom/domain/event"
	"salesroom/errors"
	"salesroom/observability"
	"salesroom/projection"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var _ contract.IDispatcher = (*Dispatcher)(nil)

type DispatcherConfig struct {
	Cooldown  time.Duration
	Retention time.Duration
	Alerts    projection.AlertPolicy
}

// Dispatcher owns the three stores and the cooldown map.
// Apply must only ever be called from one goroutine: ordering of broadcasts and the
// single active deal invariant both rely on it.
//
// Within one Apply: store mutation, then broadcast, then the domain event is handed
// to the fanout channel without waiting for persistence.
type Dispatcher struct {
	log         *slog.Logger
	clock       clock.Clock
	validate    *validator.Validate
	registry    contract.IRegistry
	deals       *projection.ActiveDeals
	quotas      *projection.Quotas
	forecasts   *projection.Forecasts
	cooldown    *Cooldown
	alertPolicy projection.AlertPolicy
	events      chan<- event.DomainEvent
	counters    *observability.Counters
}

func NewDispatcher(log *slog.Logger, clk clock.Clock, registry contract.IRegistry,
	events chan<- event.DomainEvent, counters *observability.Counters, cfg DispatcherConfig) *Dispatcher {
	if counters == nil {
		counters = observability.NewCounters()
	}
	return &Dispatcher{
		log:         log,
		clock:       clk,
		validate:    newValidator(),
		registry:    registry,
		deals:       projection.NewActiveDeals(),
		quotas:      projection.NewQuotas(),
		forecasts:   projection.NewForecasts(),
		cooldown:    NewCooldown(cfg.Cooldown, cfg.Retention),
		alertPolicy: cfg.Alerts,
		events:      events,
		counters:    counters,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// clocktime accepts both HH:MM and HH:MM:SS, which the builtin datetime tag cannot express.
	if err := v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseClock(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
	return v
}

// Apply is the only entry point that reads or mutates the stores.
func (d *Dispatcher) Apply(cmd command.Command) command.Outcome {
	switch c := cmd.(type) {
	case command.Join:
		return d.join(c)
	case command.Leave:
		return d.leave(c)
	case command.Update:
		return d.update(c)
	case command.Tick:
		return d.tick()
	case command.Enrich:
		return d.enrich(c)
	case command.ResetQuotas:
		return d.resetQuotas()
	default:
		d.log.Warn("Unknown command ignored", "type", fmt.Sprintf("%T", cmd))
		return command.Outcome{Status: command.Ignored, Err: errors.ErrUnknownEvent}
	}
}

func (d *Dispatcher) join(c command.Join) command.Outcome {
	if !c.Room.Valid() {
		return d.rejectTo(c.Sink, c.ConnectionID, fmt.Errorf("%w: unknown room %q", errors.ErrInvalidPayload, c.Room))
	}
	if err := d.registry.Subscribe(c.ConnectionID, c.Room, c.Sink); err != nil {
		return d.rejectTo(c.Sink, c.ConnectionID, err)
	}
	d.hydrate(c.Sink, c.Room)
	d.counters.Hydrations.Add(1)
	d.log.Debug("Connection joined", "connection_id", c.ConnectionID, "room", c.Room)
	return command.Outcome{Status: command.Applied, EntityID: c.ConnectionID}
}

// leave never touches domain state: a missing viewer changes nothing.
func (d *Dispatcher) leave(c command.Leave) command.Outcome {
	room, ok := d.registry.Unsubscribe(c.ConnectionID)
	if !ok {
		return command.Outcome{Status: command.Ignored, EntityID: c.ConnectionID}
	}
	d.log.Debug("Connection left", "connection_id", c.ConnectionID, "room", room)
	return command.Outcome{Status: command.Applied, EntityID: c.ConnectionID}
}

// hydrate sends the joining connection, and only it, the full state of its room:
// the deal view of the room followed by the quota and forecast snapshots.
func (d *Dispatcher) hydrate(sink domain.ConnectionSink, room domain.Room) {
	snapshot := d.deals.Snapshot()
	var envelopes []domain.Envelope
	switch room {
	case domain.DashboardRoom:
		envelopes = append(envelopes, d.envelope(domain.DashboardSnapshotEvent, dashboardSnapshot(snapshot.Deals)))
	case domain.ControlRoom:
		envelopes = append(envelopes, d.envelope(domain.ControlSnapshotEvent, controlSnapshot(snapshot.BySalesperson)))
	}
	envelopes = append(envelopes,
		d.envelope(domain.QuotaSnapshotEvent, quotaSnapshot(d.quotas.All())),
		d.envelope(domain.ForecastSnapshotEvent, forecastSnapshot(d.forecasts.All())),
	)
	for _, env := range envelopes {
		d.deliver(env, sink)
	}
}

// update applies one control event. Every rejection happens before any store is
// touched, so a refused event leaves no trace besides the validation-error.
func (d *Dispatcher) update(c command.Update) command.Outcome {
	room, ok := d.registry.RoomOf(c.ConnectionID)
	if !ok {
		return d.reject(c.ConnectionID, errors.ErrNotJoined)
	}
	if room != domain.ControlRoom {
		return d.reject(c.ConnectionID, errors.ErrReadOnlyRoom)
	}
	if c.Event == nil {
		return d.reject(c.ConnectionID, errors.ErrInvalidPayload)
	}
	if err := d.validate.Struct(c.Event); err != nil {
		return d.reject(c.ConnectionID, fmt.Errorf("%w: %s", errors.ErrInvalidPayload, validationMessage(err)))
	}

	now := d.clock.Now()
	switch e := c.Event.(type) {
	case domain.SetActiveDealPayload:
		if e.Deactivates() {
			return d.clearActiveDeal(c.ConnectionID, e.DealID, now)
		}
		return d.setActiveDeal(c.ConnectionID, e, now)
	case domain.ClearActiveDealPayload:
		return d.clearActiveDeal(c.ConnectionID, e.DealID, now)
	case domain.SetQuotaPayload:
		q := d.quotas.SetQuota(e.SalespersonID, e.SalespersonName, *e.Target, e.Accumulated, now)
		d.broadcastQuotas()
		d.ack(c.ConnectionID, q.SalespersonID, false)
		d.emit(event.QuotaChanged{Record: q, RelatedDealID: e.RelatedDealID, DealValue: e.DealValue, At: now})
		return d.applied(q.SalespersonID)
	case domain.RegisterSalePayload:
		q := d.quotas.AddSale(e.SalespersonID, e.SalespersonName, e.Value, now)
		d.broadcastQuotas()
		d.ack(c.ConnectionID, q.SalespersonID, false)
		d.emit(event.SaleRegistered{SalespersonID: e.SalespersonID, DealID: e.DealID, Value: e.Value, Quota: q, At: now})
		return d.applied(q.SalespersonID)
	case domain.RegisterMeetingPayload:
		q := d.quotas.IncrementMeetings(e.SalespersonID, now)
		d.broadcastQuotas()
		d.ack(c.ConnectionID, q.SalespersonID, false)
		d.emit(event.QuotaChanged{Record: q, At: now})
		return d.applied(q.SalespersonID)
	case domain.UpsertForecastPayload:
		f := d.forecasts.Upsert(e.Forecast.Normalized(), now)
		d.broadcastForecasts()
		d.ack(c.ConnectionID, f.ID, false)
		d.emit(event.ForecastChanged{Record: f, At: now})
		return d.applied(f.ID)
	case domain.RemoveForecastPayload:
		removed, ok := d.forecasts.Remove(e.ForecastID, e.SalespersonID)
		if !ok {
			d.send(c.ConnectionID, domain.UpdateAckEvent, domain.UpdateAck{Success: false, EntityID: e.ForecastID})
			return command.Outcome{Status: command.Ignored, EntityID: e.ForecastID}
		}
		d.broadcastForecasts()
		d.ack(c.ConnectionID, removed.ID, false)
		d.emit(event.ForecastChanged{Record: removed, Removed: true, At: now})
		return d.applied(removed.ID)
	default:
		return d.reject(c.ConnectionID, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, c.Event.EventType()))
	}
}

// setActiveDeal is the only path guarded by the cooldown: retried set events are the
// duplicates clients actually produce.
func (d *Dispatcher) setActiveDeal(connectionID string, e domain.SetActiveDealPayload, now time.Time) command.Outcome {
	if !d.cooldown.Allow(e.DealID, now) {
		d.counters.Skipped.Add(1)
		d.log.Debug("Duplicate set-active-deal skipped", "deal_id", e.DealID, "connection_id", connectionID)
		d.ack(connectionID, e.DealID, true)
		return command.Outcome{Status: command.Skipped, EntityID: e.DealID}
	}
	d.deals.SetActive(e.SalespersonID, e.DealID, e.Metadata(), now)
	d.broadcastDeals()
	d.ack(connectionID, e.DealID, false)
	record, _ := d.deals.Get(e.DealID)
	d.emit(event.ActiveDealChanged{Record: record, At: now})
	return d.applied(e.DealID)
}

// clearActiveDeal acknowledges unknown deals without broadcasting anything.
// Clearing resets the deal's cooldown: re-activating a just-cleared deal is a new intent, not a duplicate.
func (d *Dispatcher) clearActiveDeal(connectionID, dealID string, now time.Time) command.Outcome {
	record, existed := d.deals.Get(dealID)
	if !existed {
		d.ack(connectionID, dealID, false)
		return command.Outcome{Status: command.Ignored, EntityID: dealID}
	}
	d.deals.Clear(dealID)
	d.cooldown.Forget(dealID)
	d.broadcastDeals()
	d.ack(connectionID, dealID, false)
	record.IsActive = false
	record.UpdatedAt = now
	d.emit(event.ActiveDealChanged{Record: record, Cleared: true, At: now})
	return d.applied(dealID)
}

func (d *Dispatcher) tick() command.Outcome {
	alerts := projection.ComputeAlerts(d.clock.Now(), d.forecasts.All(), d.alertPolicy)
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	env := d.envelope(domain.AlertTickEvent, alerts)
	d.deliver(env, d.registry.SinksFor(domain.DashboardRoom)...)
	return command.Outcome{Status: command.Applied}
}

func (d *Dispatcher) enrich(c command.Enrich) command.Outcome {
	if !d.deals.Enrich(c.DealID, c.Deal) {
		return command.Outcome{Status: command.Ignored, EntityID: c.DealID}
	}
	d.broadcastDeals()
	record, _ := d.deals.Get(c.DealID)
	d.emit(event.ActiveDealChanged{Record: record, Enriched: true, At: d.clock.Now()})
	return d.applied(c.DealID)
}

func (d *Dispatcher) resetQuotas() command.Outcome {
	d.quotas.Clear()
	d.broadcastQuotas()
	d.emit(event.QuotasReset{At: d.clock.Now()})
	d.log.Info("Daily quotas reset")
	return command.Outcome{Status: command.Applied, EntityID: "quotas"}
}

// broadcastDeals, broadcastQuotas and broadcastForecasts each resend the store that
// changed. The other snapshots are identical to their last broadcast,
// and a new connection gets all of them at hydration.
func (d *Dispatcher) broadcastDeals() {
	snapshot := d.deals.Snapshot()
	d.broadcast(d.envelope(domain.DashboardSnapshotEvent, dashboardSnapshot(snapshot.Deals)), domain.DashboardRoom)
	d.broadcast(d.envelope(domain.ControlSnapshotEvent, controlSnapshot(snapshot.BySalesperson)), domain.ControlRoom)
}

func (d *Dispatcher) broadcastQuotas() {
	d.broadcast(d.envelope(domain.QuotaSnapshotEvent, quotaSnapshot(d.quotas.All())), domain.DashboardRoom, domain.ControlRoom)
}

func (d *Dispatcher) broadcastForecasts() {
	d.broadcast(d.envelope(domain.ForecastSnapshotEvent, forecastSnapshot(d.forecasts.All())), domain.DashboardRoom, domain.ControlRoom)
}

func (d *Dispatcher) broadcast(env domain.Envelope, rooms ...domain.Room) {
	d.counters.Broadcasts.Add(1)
	d.deliver(env, d.registry.SinksFor(rooms...)...)
}

// deliver never blocks: a full connection buffer loses this envelope only.
func (d *Dispatcher) deliver(env domain.Envelope, sinks ...domain.ConnectionSink) {
	for _, sink := range sinks {
		if !sink.Deliver(env) {
			d.counters.DroppedMessages.Add(1)
			d.log.Debug("Connection buffer full, message dropped", "type", env.Type)
		}
	}
}

func (d *Dispatcher) envelope(t domain.EventType, payload any) domain.Envelope {
	env, err := domain.NewEnvelope(t, payload)
	if err != nil {
		d.log.Error("Failed to encode envelope", "type", t, "error", err)
		return domain.Envelope{Type: t}
	}
	return env
}

func (d *Dispatcher) send(connectionID string, t domain.EventType, payload any) {
	sink, ok := d.registry.SinkOf(connectionID)
	if !ok {
		return
	}
	d.deliver(d.envelope(t, payload), sink)
}

func (d *Dispatcher) ack(connectionID, entityID string, skipped bool) {
	d.send(connectionID, domain.UpdateAckEvent, domain.UpdateAck{Success: true, EntityID: entityID, Skipped: skipped})
}

func (d *Dispatcher) reject(connectionID string, err error) command.Outcome {
	sink, _ := d.registry.SinkOf(connectionID)
	return d.rejectTo(sink, connectionID, err)
}

func (d *Dispatcher) rejectTo(sink domain.ConnectionSink, connectionID string, err error) command.Outcome {
	d.counters.Rejected.Add(1)
	d.log.Debug("Command rejected", "connection_id", connectionID, "error", err)
	if sink != nil {
		d.deliver(d.envelope(domain.ValidationErrorEvent, domain.ValidationError{Message: err.Error()}), sink)
	}
	return command.Outcome{Status: command.Rejected, Err: err}
}

func (d *Dispatcher) applied(entityID string) command.Outcome {
	d.counters.Applied.Add(1)
	return command.Outcome{Status: command.Applied, EntityID: entityID}
}

// emit hands the event to the fanout without waiting. A full channel loses the
// durable copy of this event, never the real-time state.
func (d *Dispatcher) emit(e event.DomainEvent) {
	if d.events == nil {
		return
	}
	select {
	case d.events <- e:
	default:
		d.counters.LostEvents.Add(1)
		d.log.Warn("Event channel full, persistence skipped", "entity_id", e.EntityID(), "type", fmt.Sprintf("%T", e))
	}
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return err.Error()
	}
	return strings.Join(lo.Map(fieldErrors, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
	}), "; ")
}

// ActiveDeals, Quotas and Forecasts copy the current state. Same single-goroutine rule as Apply.
func (d *Dispatcher) ActiveDeals() domain.ActiveDealSnapshot { return d.deals.Snapshot() }

func (d *Dispatcher) Quotas() []domain.Quota { return d.quotas.All() }

func (d *Dispatcher) Forecasts() map[string][]domain.Forecast { return d.forecasts.All() }
