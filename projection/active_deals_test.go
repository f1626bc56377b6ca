package projection

import (
	"salesroom/domain"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestActiveDeals_SetActive_Replaces_Previous_Deal_Of_Salesperson(t *testing.T) {
	req := require.New(t)
	store := NewActiveDeals()
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Given S1 works on D1
	snapshot := store.SetActive("S1", "D1", domain.DealMetadata{}, at)
	req.Equal(map[string]string{"S1": "D1"}, snapshot.BySalesperson)

	// When S1 switches to D2
	snapshot = store.SetActive("S1", "D2", domain.DealMetadata{}, at.Add(time.Minute))

	// Then only D2 is left for S1
	req.Equal(map[string]string{"S1": "D2"}, snapshot.BySalesperson)
	req.Len(snapshot.Deals, 1)
	req.Equal("D2", snapshot.Deals[0].DealID)
	req.True(snapshot.Deals[0].IsActive)
	_, ok := store.Get("D1")
	req.False(ok)
}

func TestActiveDeals_Single_Active_Deal_Per_Salesperson(t *testing.T) {
	req := require.New(t)
	store := NewActiveDeals()
	at := time.Now()

	deals := []string{"D1", "D2", "D3", "D4", "D5"}
	for i, id := range deals {
		store.SetActive("S1", id, domain.DealMetadata{}, at.Add(time.Duration(i)*time.Second))
		store.SetActive("S2", "X"+id, domain.DealMetadata{}, at)
	}

	active := lo.Filter(store.Records(), func(r domain.ActiveDeal, _ int) bool {
		return r.SalespersonID == "S1" && r.IsActive
	})
	req.Len(active, 1)
	req.Equal("D5", active[0].DealID)
	req.Equal("XD5", store.BySalesperson()["S2"])
}

func TestActiveDeals_SetActive_Keeps_Other_Salespeople(t *testing.T) {
	req := require.New(t)
	store := NewActiveDeals()
	at := time.Now()

	store.SetActive("S1", "D1", domain.DealMetadata{}, at)
	snapshot := store.SetActive("S2", "D2", domain.DealMetadata{CustomerName: "ACME", Value: lo.ToPtr(500.0)}, at)

	req.Equal(map[string]string{"S1": "D1", "S2": "D2"}, snapshot.BySalesperson)
	req.Equal([]string{"D1", "D2"}, lo.Map(snapshot.Deals, func(r domain.ActiveDeal, _ int) string { return r.DealID }))
	req.Equal("ACME", snapshot.Deals[1].CustomerName)
	req.Equal(500.0, *snapshot.Deals[1].Value)
}

func TestActiveDeals_Clear_Unknown_Deal_Is_Noop(t *testing.T) {
	req := require.New(t)
	store := NewActiveDeals()
	store.SetActive("S1", "D1", domain.DealMetadata{}, time.Now())

	snapshot := store.Clear("unknown")
	req.Len(snapshot.Deals, 1)

	snapshot = store.Clear("D1")
	req.Empty(snapshot.Deals)
	req.Empty(snapshot.BySalesperson)
}

func TestActiveDeals_Enrich_Fills_Only_Missing_Fields(t *testing.T) {
	req := require.New(t)
	store := NewActiveDeals()
	store.SetActive("S1", "D1", domain.DealMetadata{CustomerName: "Typed by hand"}, time.Now())

	changed := store.Enrich("D1", domain.DealSnapshot{
		ID:            "D1",
		CustomerName:  "From CRM",
		CustomerPhone: "+33 1 23 45 67 89",
		Value:         lo.ToPtr(1200.0),
	})

	req.True(changed)
	record, ok := store.Get("D1")
	req.True(ok)
	req.Equal("Typed by hand", record.CustomerName)
	req.Equal("+33 1 23 45 67 89", record.CustomerPhone)
	req.Equal(1200.0, *record.Value)

	// Enriching twice changes nothing
	req.False(store.Enrich("D1", domain.DealSnapshot{CustomerName: "Other"}))
	// Cleared deals are not resurrected
	store.Clear("D1")
	req.False(store.Enrich("D1", domain.DealSnapshot{CustomerName: "Other"}))
}
