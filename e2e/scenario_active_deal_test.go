package e2e

import (
	"context"
	"salesroom/domain"
	"salesroom/transport"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testActiveDealSuite struct {
	BaseGrpcSuite
}

func TestActiveDealSuite(t *testing.T) {
	suite.Run(t, &testActiveDealSuite{})
}

func (s *testActiveDealSuite) TestActiveDealFlow() {
	dealID := uuid.NewString()
	salespersonID := "e2e-" + uuid.NewString()[:8]

	s.WithSession("Control sets then clears a deal", domain.ControlRoom, func(ctx context.Context, session *transport.Session) {
		// --- STEP 1: HYDRATION ---
		s.Await(session, domain.ControlSnapshotEvent)
		s.Await(session, domain.QuotaSnapshotEvent)
		s.Await(session, domain.ForecastSnapshotEvent)

		// --- STEP 2: SET ---
		s.Require().NoError(session.Send(domain.SetActiveDeal, domain.SetActiveDealPayload{
			DealID:        dealID,
			SalespersonID: salespersonID,
			IsActive:      lo.ToPtr(true),
			UpdatedAt:     time.Now(),
			CustomerName:  "E2E Customer",
		}))
		var control domain.ControlSnapshot
		s.Require().NoError(s.Await(session, domain.ControlSnapshotEvent).Decode(&control))
		s.Require().Contains(control, domain.Pair[string, string]{Key: dealID, Value: salespersonID})

		var ack domain.UpdateAck
		s.Require().NoError(s.Await(session, domain.UpdateAckEvent).Decode(&ack))
		s.Require().True(ack.Success)
		s.Require().Equal(dealID, ack.EntityID)

		// --- STEP 3: CLEAR ---
		s.Require().NoError(session.Send(domain.ClearActiveDeal, domain.ClearActiveDealPayload{
			DealID: dealID, UpdatedAt: time.Now(),
		}))
		s.Require().NoError(s.Await(session, domain.ControlSnapshotEvent).Decode(&control))
		s.Require().NotContains(control, domain.Pair[string, string]{Key: dealID, Value: salespersonID})
		s.Require().NoError(s.Await(session, domain.UpdateAckEvent).Decode(&ack))
		s.Require().True(ack.Success)
	})
}
