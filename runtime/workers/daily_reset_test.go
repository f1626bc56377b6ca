package workers

import (
	"context"
	"log/slog"
	"salesroom/clock"
	"salesroom/domain/command"
	"salesroom/errors"
	"salesroom/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseResetTime(t *testing.T) {
	req := require.New(t)

	at, err := ParseResetTime("00:05")
	req.NoError(err)
	req.Equal(ResetTime{Hour: 0, Minute: 5}, at)

	_, err = ParseResetTime("midnight")
	req.ErrorIs(err, errors.ErrInvalidResetTime)
}

func TestResetTime_Next(t *testing.T) {
	req := require.New(t)
	loc := time.FixedZone("BRT", -3*3600)
	at := ResetTime{Hour: 6, Minute: 0}

	// Before the reset time: today
	now := time.Date(2026, 3, 2, 5, 59, 0, 0, loc)
	req.Equal(time.Date(2026, 3, 2, 6, 0, 0, 0, loc), at.Next(now, loc))

	// Exactly at the reset time: tomorrow
	now = time.Date(2026, 3, 2, 6, 0, 0, 0, loc)
	req.Equal(time.Date(2026, 3, 3, 6, 0, 0, 0, loc), at.Next(now, loc))

	// Expressed in another zone
	now = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	req.True(time.Date(2026, 3, 2, 6, 0, 0, 0, loc).Equal(at.Next(now, loc)))
}

func TestDailyReset_Submits_Reset_When_Due(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)

	// Given the clock is a few milliseconds before the reset time
	now := time.Date(2026, 3, 2, 23, 59, 59, 950_000_000, time.UTC)
	clk := clock.NewFakeClock(now)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	submitted := make(chan struct{})
	submitter.EXPECT().Submit(gomock.Any(), command.ResetQuotas{}).DoAndReturn(func(context.Context, command.Command) error {
		clk.Advance(time.Hour)
		close(submitted)
		cancel()
		return nil
	})

	done := make(chan error)
	go func() { done <- NewDailyReset(slog.Default(), clk, time.UTC, ResetTime{}, submitter).Run(ctx) }()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		req.Fail("reset not submitted")
	}
	req.NoError(<-done)
}
