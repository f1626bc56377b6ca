package workers

import (
	"context"
	"fmt"
	"log/slog"
	"salesroom/clock"
	"salesroom/contract"
	"salesroom/domain/command"
	"salesroom/errors"
	"time"
)

// ResetTime is a wall-clock time of day.
type ResetTime struct {
	Hour   int
	Minute int
}

// ParseResetTime reads an "HH:MM" string.
func ParseResetTime(s string) (ResetTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ResetTime{}, fmt.Errorf("%w: %q", errors.ErrInvalidResetTime, s)
	}
	return ResetTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Next returns the first occurrence of the reset time strictly after now, in loc.
func (r ResetTime) Next(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), r.Hour, r.Minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// DailyReset clears every quota once a day so each business day starts from zero.
type DailyReset struct {
	log       *slog.Logger
	clock     clock.Clock
	location  *time.Location
	at        ResetTime
	submitter contract.Submitter
}

func NewDailyReset(log *slog.Logger, clk clock.Clock, location *time.Location, at ResetTime, submitter contract.Submitter) *DailyReset {
	if location == nil {
		location = time.Local
	}
	return &DailyReset{log: log, clock: clk, location: location, at: at, submitter: submitter}
}

func (w *DailyReset) Run(ctx context.Context) error {
	for {
		now := w.clock.Now()
		next := w.at.Next(now, w.location)
		w.log.Debug("Next quota reset scheduled", "at", next)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			if err := w.submitter.Submit(ctx, command.ResetQuotas{}); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("submitting quota reset: %w", err)
			}
		}
	}
}
