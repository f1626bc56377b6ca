package projection

import (
	"salesroom/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestForecasts_Upsert_Appends_Then_Replaces(t *testing.T) {
	req := require.New(t)
	store := NewForecasts()
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	store.Upsert(domain.Forecast{ID: "F1", SalespersonID: "S1", CustomerName: "ACME", ScheduledDate: "2026-03-02", Value: 10}, created)
	store.Upsert(domain.Forecast{ID: "F2", SalespersonID: "S1", CustomerName: "Globex", ScheduledDate: "2026-03-02"}, created)

	updated := store.Upsert(domain.Forecast{ID: "F1", SalespersonID: "S1", CustomerName: "ACME", ScheduledDate: "2026-03-02", Value: 99}, created.Add(time.Hour))

	list := store.BySalesperson("S1")
	req.Len(list, 2)
	req.Equal("F1", list[0].ID)
	req.Equal(99.0, list[0].Value)
	req.Equal(created, list[0].CreatedAt)
	req.Equal(created.Add(time.Hour), updated.UpdatedAt)
}

func TestForecasts_Remove(t *testing.T) {
	req := require.New(t)
	store := NewForecasts()
	now := time.Now()
	store.Upsert(domain.Forecast{ID: "F1", SalespersonID: "S1"}, now)
	store.Upsert(domain.Forecast{ID: "F2", SalespersonID: "S1"}, now)

	_, ok := store.Remove("F1", "S2")
	req.False(ok)

	removed, ok := store.Remove("F1", "S1")
	req.True(ok)
	req.Equal("F1", removed.ID)
	req.Len(store.BySalesperson("S1"), 1)

	_, ok = store.Remove("F2", "S1")
	req.True(ok)
	req.Empty(store.All())
}

func TestForecasts_Copies_Do_Not_Alias_Storage(t *testing.T) {
	req := require.New(t)
	store := NewForecasts()
	store.Upsert(domain.Forecast{ID: "F1", SalespersonID: "S1", Notes: "call back"}, time.Now())

	list := store.All()["S1"]
	list[0].Notes = "mutated"

	req.Equal("call back", store.BySalesperson("S1")[0].Notes)
}

func TestSortForDisplay_Untimed_Last(t *testing.T) {
	req := require.New(t)
	list := []domain.Forecast{
		{ID: "no-time"},
		{ID: "late", ScheduledTime: "16:30"},
		{ID: "early", ScheduledTime: "08:15"},
	}

	domain.SortForDisplay(list)

	req.Equal("early", list[0].ID)
	req.Equal("late", list[1].ID)
	req.Equal("no-time", list[2].ID)
}
