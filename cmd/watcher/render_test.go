package main

import (
	"bytes"
	"salesroom/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderer_Dashboard_Snapshot(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	value := 1500.0
	env, err := domain.NewEnvelope(domain.DashboardSnapshotEvent, domain.DashboardSnapshot{
		{Key: "s1", Value: domain.ActiveDeal{DealID: "deal-1", SalespersonID: "s1", IsActive: true,
			CustomerName: "Acme", Value: &value, UpdatedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)}},
	})
	req.NoError(err)

	req.NoError(NewRenderer(&out, false).Render(env))

	req.Contains(out.String(), "ACTIVE DEALS")
	req.Contains(out.String(), "deal-1")
	req.Contains(out.String(), "Acme")
	req.Contains(out.String(), "1500.00")
}

func TestRenderer_Quota_Progress(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	env, err := domain.NewEnvelope(domain.QuotaSnapshotEvent, domain.QuotaSnapshot{
		{Key: "s1", Value: domain.Quota{SalespersonID: "s1", SalespersonName: "Ana", TargetValue: 1000, AccumulatedValue: 250}},
	})
	req.NoError(err)

	req.NoError(NewRenderer(&out, false).Render(env))

	req.Contains(out.String(), "Ana")
	req.Contains(out.String(), "25%")
}

func TestRenderer_Alerts_And_Errors(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewRenderer(&out, false)
	alerts, err := domain.NewEnvelope(domain.AlertTickEvent, []domain.Alert{
		{SalespersonID: "s1", Forecast: domain.Forecast{CustomerName: "Acme"}, CountdownMinutes: 9, CountdownSeconds: 5},
	})
	req.NoError(err)
	invalid, err := domain.NewEnvelope(domain.ValidationErrorEvent, domain.ValidationError{Message: "invalid quota"})
	req.NoError(err)

	req.NoError(renderer.Render(alerts))
	req.NoError(renderer.Render(invalid))

	req.Contains(out.String(), "s1 meets Acme in 9m05s")
	req.Contains(out.String(), "validation error: invalid quota")
}

func TestRenderer_Rejects_Malformed_Payload(t *testing.T) {
	env := domain.Envelope{Type: domain.QuotaSnapshotEvent, Payload: []byte(`{"not":"a list"}`)}
	require.Error(t, NewRenderer(&bytes.Buffer{}, false).Render(env))
}
