// Package runtime owns the single-writer loop of the sales room: connection routing,
// the dispatcher applying commands and the workers feeding it.
package runtime

import (
	"context"
	"log/slog"
	"salesroom/clock"
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/domain/command"
	"salesroom/domain/event"
	"salesroom/errors"
	"salesroom/observability"
	"salesroom/projection"
	"salesroom/runtime/workers"
	"sync"
	"time"
)

const DefaultBufferSize = 256

type Options struct {
	BufferSize     int
	SinkTimeout    time.Duration
	Cooldown       time.Duration
	Retention      time.Duration
	AlertInterval  time.Duration
	AlertWindow    time.Duration
	HealthInterval time.Duration
	Location       *time.Location
	DailyResetAt   string
}

var _ contract.Submitter = (*Orchestrator)(nil)
var _ contract.Enricher = (*Orchestrator)(nil)

// Orchestrator is the entry point of the transport layer. Every call is turned into a
// command queued for the dispatch worker; nothing here touches the stores directly.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	clock      clock.Clock
	opts       Options
	supervisor contract.ISupervisor
	registry   *Registry
	dispatcher *Dispatcher
	commands   chan command.Request
	events     chan event.DomainEvent
	counters   *observability.Counters
	sinks      []contract.EventSink
	started    bool
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewOrchestrator(log *slog.Logger, clk clock.Clock, supervisor contract.ISupervisor,
	registry *Registry, counters *observability.Counters, opts Options) *Orchestrator {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if counters == nil {
		counters = observability.NewCounters()
	}
	events := make(chan event.DomainEvent, opts.BufferSize)
	dispatcher := NewDispatcher(log, clk, registry, events, counters, DispatcherConfig{
		Cooldown:  opts.Cooldown,
		Retention: opts.Retention,
		Alerts:    projection.AlertPolicy{Window: opts.AlertWindow, Location: opts.Location},
	})
	return &Orchestrator{
		log:        log,
		clock:      clk,
		opts:       opts,
		supervisor: supervisor,
		registry:   registry,
		dispatcher: dispatcher,
		commands:   make(chan command.Request, opts.BufferSize),
		events:     events,
		counters:   counters,
		done:       make(chan struct{}),
	}
}

// Add registers event sinks. It must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sinks...)
}

func (o *Orchestrator) Counters() *observability.Counters { return o.counters }

func (o *Orchestrator) Registry() contract.IRegistry { return o.registry }

// Submit queues cmd for the dispatcher, blocking while the queue is full.
func (o *Orchestrator) Submit(ctx context.Context, cmd command.Command) error {
	return o.submit(ctx, command.Request{Command: cmd})
}

// Apply queues cmd and waits for its outcome.
func (o *Orchestrator) Apply(ctx context.Context, cmd command.Command) (command.Outcome, error) {
	reply := make(chan command.Outcome, 1)
	if err := o.submit(ctx, command.Request{Command: cmd, Reply: reply}); err != nil {
		return command.Outcome{}, err
	}
	select {
	case outcome := <-reply:
		return outcome, nil
	case <-ctx.Done():
		return command.Outcome{}, ctx.Err()
	case <-o.done:
		return command.Outcome{}, errors.ErrDispatcherClosed
	}
}

func (o *Orchestrator) submit(ctx context.Context, req command.Request) error {
	select {
	case <-o.done:
		return errors.ErrDispatcherClosed
	default:
	}
	select {
	case o.commands <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-o.done:
		return errors.ErrDispatcherClosed
	}
}

func (o *Orchestrator) Join(ctx context.Context, connectionID string, room domain.Room, sink domain.ConnectionSink) error {
	return o.Submit(ctx, command.Join{ConnectionID: connectionID, Room: room, Sink: sink})
}

func (o *Orchestrator) Update(ctx context.Context, connectionID string, in domain.Inbound) error {
	return o.Submit(ctx, command.Update{ConnectionID: connectionID, Event: in})
}

// Leave is queued behind the connection's earlier commands so it never overtakes its Join.
func (o *Orchestrator) Leave(connectionID string) {
	if err := o.Submit(context.Background(), command.Leave{ConnectionID: connectionID}); err != nil {
		o.log.Debug("Leave not submitted", "connection_id", connectionID, "error", err)
	}
}

// EnrichDeal hands CRM data back to the single writer.
func (o *Orchestrator) EnrichDeal(ctx context.Context, dealID string, deal domain.DealSnapshot) error {
	return o.Submit(ctx, command.Enrich{DealID: dealID, Deal: deal})
}

// Start registers every worker with the supervisor and runs it in the background.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	pipeline, err := o.prepareWorkers()
	if err != nil {
		o.mu.Unlock()
		return err
	}
	o.supervisor.Add(pipeline...)
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.started = true
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "workers", len(pipeline))
	go func() {
		o.supervisor.Run(runCtx)
		close(o.done)
	}()
	return nil
}

func (o *Orchestrator) prepareWorkers() ([]contract.Worker, error) {
	res := []contract.Worker{
		workers.NewDispatchWorker(o.log, o.dispatcher, o.commands),
		workers.NewEventFanout(o.log, o.events, o.opts.SinkTimeout, o.counters, o.sinks...),
		workers.NewAlertTicker(o.log, o, o.opts.AlertInterval),
		workers.NewHealth(o.log, o.opts.HealthInterval, o.registry, o.counters),
	}
	if o.opts.DailyResetAt != "" {
		at, err := workers.ParseResetTime(o.opts.DailyResetAt)
		if err != nil {
			return nil, err
		}
		res = append(res, workers.NewDailyReset(o.log, o.clock, o.opts.Location, at, o))
	}
	return res, nil
}

// Stop cancels the workers and waits until the event fanout has drained.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.mu.Lock()
	started, cancel := o.started, o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.supervisor.Stop()
	if started {
		<-o.done
	}
	o.log.Info("Orchestrator stopped", "counters", o.counters.Snapshot())
}
