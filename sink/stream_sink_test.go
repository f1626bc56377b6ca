package sink

import (
	"salesroom/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamSink_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	sink := NewStreamSink(2)
	env := domain.Envelope{Type: domain.AlertTickEvent}

	// Given a buffer of two
	req.True(sink.Deliver(env))
	req.True(sink.Deliver(env))

	// When a third envelope arrives before the reader caught up
	delivered := sink.Deliver(env)

	// Then it is refused without blocking
	req.False(delivered)
	req.Len(sink.Outbound(), 2)
}

func TestStreamSink_Refuses_After_Close(t *testing.T) {
	req := require.New(t)
	sink := NewStreamSink(2)

	sink.Close()
	sink.Close()

	req.False(sink.Deliver(domain.Envelope{Type: domain.AlertTickEvent}))
	select {
	case <-sink.Done():
	default:
		req.Fail("done should be closed")
	}
}

func TestStreamSink_Preserves_Order(t *testing.T) {
	req := require.New(t)
	sink := NewStreamSink(0)

	req.True(sink.Deliver(domain.Envelope{Type: domain.DashboardSnapshotEvent}))
	req.True(sink.Deliver(domain.Envelope{Type: domain.QuotaSnapshotEvent}))

	req.Equal(domain.DashboardSnapshotEvent, (<-sink.Outbound()).Type)
	req.Equal(domain.QuotaSnapshotEvent, (<-sink.Outbound()).Type)
}
