package runtime

import (
	"salesroom/domain"
	"salesroom/errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	sink := &recordingSink{}

	// Given nobody is connected
	req.Empty(registry.sessions)
	req.Empty(registry.roomMembers)

	// When a connection joins the dashboard
	err := registry.Subscribe(connectionID, domain.DashboardRoom, sink)

	// Then
	req.NoError(err)
	req.Len(registry.sessions, 1)
	req.Equal(sink, registry.sessions[connectionID])
	req.Len(registry.roomMembers, 1)
	req.Contains(registry.roomMembers[domain.DashboardRoom], connectionID)
	req.Len(registry.SinksFor(domain.DashboardRoom), 1)
	req.Empty(registry.SinksFor(domain.ControlRoom))
}

func TestRegistry_Subscribe_Both_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	viewer1, viewer2, operator := uuid.NewString(), uuid.NewString(), uuid.NewString()

	// When viewers and an operator join
	req.NoError(registry.Subscribe(viewer1, domain.DashboardRoom, &recordingSink{}))
	req.NoError(registry.Subscribe(viewer2, domain.DashboardRoom, &recordingSink{}))
	req.NoError(registry.Subscribe(operator, domain.ControlRoom, &recordingSink{}))

	// Then each room only lists its own members
	req.Equal(2, registry.Count(domain.DashboardRoom))
	req.Equal(1, registry.Count(domain.ControlRoom))
	req.Len(registry.SinksFor(domain.DashboardRoom, domain.ControlRoom), 3)
	room, ok := registry.RoomOf(operator)
	req.True(ok)
	req.Equal(domain.ControlRoom, room)
}

func TestRegistry_Subscribe_Twice_Keeps_First_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()

	req.NoError(registry.Subscribe(connectionID, domain.ControlRoom, &recordingSink{}))
	err := registry.Subscribe(connectionID, domain.DashboardRoom, &recordingSink{})

	req.ErrorIs(err, errors.ErrAlreadyJoined)
	req.Equal([]string{connectionID}, registry.MembersOf(domain.ControlRoom))
	req.Empty(registry.MembersOf(domain.DashboardRoom))
}

func TestRegistry_Unsubscribe_Last_Member_Drops_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	req.NoError(registry.Subscribe(connectionID, domain.DashboardRoom, &recordingSink{}))

	// When the only viewer leaves
	room, ok := registry.Unsubscribe(connectionID)

	// Then the index is empty again
	req.True(ok)
	req.Equal(domain.DashboardRoom, room)
	req.Empty(registry.sessions)
	req.Empty(registry.rooms)
	req.Empty(registry.roomMembers)
	_, ok = registry.SinkOf(connectionID)
	req.False(ok)
}

func TestRegistry_Unsubscribe_Keeps_Other_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Subscribe("a", domain.DashboardRoom, &recordingSink{}))
	req.NoError(registry.Subscribe("b", domain.DashboardRoom, &recordingSink{}))

	_, ok := registry.Unsubscribe("a")
	_, again := registry.Unsubscribe("a")

	req.True(ok)
	req.False(again)
	req.Equal([]string{"b"}, registry.MembersOf(domain.DashboardRoom))
}

func TestRegistry_Concurrent_Readers_And_Writer(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	// Given one writer subscribing while readers count and resolve sinks
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, id := range ids {
			_ = registry.Subscribe(id, domain.DashboardRoom, &recordingSink{})
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ids {
				_ = registry.Count(domain.DashboardRoom)
				_ = registry.SinksFor(domain.DashboardRoom, domain.ControlRoom)
				_ = registry.MembersOf(domain.DashboardRoom)
			}
		}()
	}
	wg.Wait()

	// Then every connection is indexed once
	req.Equal(len(ids), registry.Count(domain.DashboardRoom))
	req.Len(registry.SinksFor(domain.DashboardRoom), len(ids))
}
