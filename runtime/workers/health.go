package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/observability"
	"time"

	"github.com/shirou/gopsutil/process"
)

const DefaultHealthInterval = 30 * time.Second

// Health periodically logs process resource usage next to the dispatcher counters.
type Health struct {
	log      *slog.Logger
	interval time.Duration
	registry contract.IRegistry
	counters *observability.Counters
}

func NewHealth(log *slog.Logger, interval time.Duration, registry contract.IRegistry, counters *observability.Counters) *Health {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &Health{log: log, interval: interval, registry: registry, counters: counters}
}

func (w *Health) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Debug("Error while retrieving own process, resource usage disabled", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health reports")
			return nil
		case <-ticker.C:
			w.report(proc)
		}
	}
}

func (w *Health) report(proc *process.Process) {
	attrs := []any{
		"goroutines", runtime.NumGoroutine(),
		"dashboards", w.registry.Count(domain.DashboardRoom),
		"controls", w.registry.Count(domain.ControlRoom),
	}
	if proc != nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			attrs = append(attrs, "rss_bytes", mem.RSS)
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			attrs = append(attrs, "cpu_percent", cpu)
		}
	}
	for name, value := range w.counters.Snapshot() {
		attrs = append(attrs, name, value)
	}
	w.log.Info("Health", attrs...)
}
