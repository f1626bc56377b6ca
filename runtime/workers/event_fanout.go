package workers

import (
	"context"
	"fmt"
	"log/slog"
	"salesroom/contract"
	"salesroom/domain/event"
	"salesroom/observability"
	"sync"
	"time"
)

const DefaultSinkTimeout = 10 * time.Second

// EventFanout delivers domain events to the durable and enrichment sinks.
//
// It provides best-effort fan-out: every sink gets its own goroutine bounded by
// the sink timeout, so a slow disk or CRM never stalls the dispatcher.
// Failures are logged and counted, never retried.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
	counters    *observability.Counters
	wg          *sync.WaitGroup
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent, sinkTimeout time.Duration,
	counters *observability.Counters, sinks ...contract.EventSink) *EventFanout {
	if sinkTimeout <= 0 {
		sinkTimeout = DefaultSinkTimeout
	}
	if counters == nil {
		counters = observability.NewCounters()
	}
	return &EventFanout{
		log:         log,
		events:      events,
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
		counters:    counters,
		wg:          &sync.WaitGroup{},
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.drain(ctx)
			w.wg.Wait()
			w.log.Debug("Context done, event fanout drained")
			return nil
		}
	}
}

// drain hands over whatever the dispatcher queued before shutdown.
func (w *EventFanout) drain(ctx context.Context) {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				return
			}
			w.Fanout(ctx, evt)
		default:
			return
		}
	}
}

// Fanout One goroutine per sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		w.wg.Add(1)
		go func(s contract.EventSink) {
			defer w.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					w.counters.SinkFailures.Add(1)
					w.log.Error("Sink panicked", "sink", fmt.Sprintf("%T", s), "panic", r)
				}
			}()
			sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.sinkTimeout)
			defer cancel()
			if err := s.Consume(sinkCtx, evt); err != nil {
				w.counters.SinkFailures.Add(1)
				w.log.Warn("Sink failed to consume event",
					"sink", fmt.Sprintf("%T", s),
					"entity_id", evt.EntityID(),
					"error", err)
			}
		}(sink)
	}
}
