package workers

import (
	"context"
	"log/slog"
	"salesroom/contract"
	"salesroom/domain/command"
	"time"
)

const DefaultAlertInterval = time.Second

// AlertTicker asks the dispatcher to recompute alerts at a fixed cadence.
// Alert computation itself stays inside the single writer.
type AlertTicker struct {
	log       *slog.Logger
	interval  time.Duration
	submitter contract.Submitter
}

func NewAlertTicker(log *slog.Logger, submitter contract.Submitter, interval time.Duration) *AlertTicker {
	if interval <= 0 {
		interval = DefaultAlertInterval
	}
	return &AlertTicker{log: log, interval: interval, submitter: submitter}
}

func (w *AlertTicker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping alert ticker")
			return nil
		case <-ticker.C:
			if err := w.submitter.Submit(ctx, command.Tick{}); err != nil && ctx.Err() == nil {
				w.log.Warn("Alert tick not submitted", "error", err)
			}
		}
	}
}
