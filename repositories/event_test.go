package repositories

import (
	"context"
	"encoding/json"
	"log/slog"
	"salesroom/domain"
	"salesroom/domain/event"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEventRepository_Lists_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewEventRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Given three deal events a minute apart
	for i, dealID := range []string{"d1", "d2", "d3"} {
		req.NoError(repository.SaveActiveDealEvent(ctx, event.ActiveDealChanged{
			Record: domain.ActiveDeal{DealID: dealID, SalespersonID: "s1", IsActive: true},
			At:     at.Add(time.Duration(i) * time.Minute),
		}))
	}
	// And an event of another kind
	req.NoError(repository.SaveForecastEvent(ctx, event.ForecastChanged{Record: domain.Forecast{ID: "f1"}, At: at}))

	// When listing deal events
	events, _, err := repository.List(KindDeal, nil)

	// Then they come back newest first and only for that kind
	req.NoError(err)
	req.Equal([]string{"d3", "d2", "d1"}, lo.Map(events, func(e StoredEvent, _ int) string { return e.EntityID }))
	req.Equal("set", events[0].Action)

	var record domain.ActiveDeal
	req.NoError(json.Unmarshal(events[0].Payload, &record))
	req.Equal("d3", record.DealID)
}

func TestEventRepository_Pages_With_Cursor(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewEventRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), &limit)
	ctx := context.Background()
	at := time.Now().UTC()

	for i := 0; i < 3; i++ {
		req.NoError(repository.SaveQuotaEvent(ctx, event.QuotaChanged{
			Record: domain.Quota{SalespersonID: "s1", MeetingsCount: i},
			At:     at.Add(time.Duration(i) * time.Second),
		}))
	}

	first, cursor, err := repository.List(KindQuota, nil)
	req.NoError(err)
	req.Len(first, limit)

	second, _, err := repository.List(KindQuota, cursor)
	req.NoError(err)
	req.Len(second, 1)
	req.True(second[0].At.Before(first[1].At))
}

func TestEventRepository_Same_Instant_Does_Not_Overwrite(t *testing.T) {
	req := require.New(t)
	repository := NewEventRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	ctx := context.Background()
	at := time.Now()

	req.NoError(repository.SaveSaleEvent(ctx, event.SaleRegistered{SalespersonID: "s1", Value: 10, At: at}))
	req.NoError(repository.SaveSaleEvent(ctx, event.SaleRegistered{SalespersonID: "s1", Value: 20, At: at}))

	events, _, err := repository.List(KindSale, nil)
	req.NoError(err)
	req.Len(events, 2)
}

func TestEventRepository_Actions(t *testing.T) {
	req := require.New(t)
	repository := NewEventRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	ctx := context.Background()
	at := time.Now()

	req.NoError(repository.SaveActiveDealEvent(ctx, event.ActiveDealChanged{Record: domain.ActiveDeal{DealID: "d1"}, Cleared: true, At: at}))
	req.NoError(repository.SaveForecastEvent(ctx, event.ForecastChanged{Record: domain.Forecast{ID: "f1"}, Removed: true, At: at}))
	req.NoError(repository.SaveQuotasReset(ctx, event.QuotasReset{At: at}))

	deals, _, _ := repository.List(KindDeal, nil)
	forecasts, _, _ := repository.List(KindForecast, nil)
	resets, _, _ := repository.List(KindReset, nil)
	req.Equal("cleared", deals[0].Action)
	req.Equal("removed", forecasts[0].Action)
	req.Len(resets, 1)
}

func TestEventRepository_Canceled_Context_Is_Not_Stored(t *testing.T) {
	req := require.New(t)
	repository := NewEventRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repository.SaveQuotasReset(ctx, event.QuotasReset{At: time.Now()})

	req.ErrorIs(err, context.Canceled)
	events, _, err := repository.List(KindReset, nil)
	req.NoError(err)
	req.Empty(events)
}

func TestParseKind(t *testing.T) {
	req := require.New(t)
	kind, err := ParseKind("forecast")
	req.NoError(err)
	req.Equal(KindForecast, kind)
	_, err = ParseKind("nope")
	req.Error(err)
}
