package runtime

import (
	"salesroom/contract"
	"salesroom/domain"
	"salesroom/errors"
	"sort"
	"sync"
)

// Set is a set of connection ids.
type Set map[string]struct{}

var _ contract.IRegistry = (*Registry)(nil)

// Registry is the bidirectional index between connections and rooms.
// Only the dispatcher mutates it, but the health worker and the Stats RPC read room
// counts from other goroutines, so every access goes through mu. The maps are never
// handed out: callers get copies (MembersOf, SinksFor) or single lookups.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]domain.ConnectionSink // connection -> sink
	rooms       map[string]domain.Room           // connection -> room
	roomMembers map[domain.Room]Set              // room -> connections
}

// NewRegistry returns an empty registry with both rooms unpopulated.
func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]domain.ConnectionSink),
		rooms:       make(map[string]domain.Room),
		roomMembers: make(map[domain.Room]Set),
	}
}

// Subscribe assigns a connection to a room for the rest of its lifetime.
// A connection that already joined a room cannot switch.
func (r *Registry) Subscribe(connectionID string, room domain.Room, sink domain.ConnectionSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[connectionID]; ok {
		return errors.ErrAlreadyJoined
	}
	r.sessions[connectionID] = sink
	r.rooms[connectionID] = room
	if _, ok := r.roomMembers[room]; !ok {
		r.roomMembers[room] = make(Set)
	}
	r.roomMembers[room][connectionID] = struct{}{}
	return nil
}

// Unsubscribe removes a connection and reports the room it was in.
// Empty rooms are dropped from the index.
func (r *Registry) Unsubscribe(connectionID string) (domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[connectionID]
	if !ok {
		return "", false
	}
	delete(r.sessions, connectionID)
	delete(r.rooms, connectionID)
	if members, ok := r.roomMembers[room]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.roomMembers, room)
		}
	}
	return room, true
}

// RoomOf returns the room a connection joined, false before its join is applied.
func (r *Registry) RoomOf(connectionID string) (domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[connectionID]
	return room, ok
}

// SinkOf returns the delivery sink of a joined connection.
// It is used to answer the sender only (acks and validation errors).
func (r *Registry) SinkOf(connectionID string) (domain.ConnectionSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[connectionID]
	return sink, ok
}

// MembersOf returns the connection ids of a room, sorted.
func (r *Registry) MembersOf(room domain.Room) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]string, 0, len(r.roomMembers[room]))
	for id := range r.roomMembers[room] {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// SinksFor resolves the sinks of every member of the given rooms.
// The slice is built under the read lock, so delivering to it afterwards never holds
// the lock while pushing into a connection buffer. Returns nil when nobody is connected.
func (r *Registry) SinksFor(rooms ...domain.Room) []domain.ConnectionSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []domain.ConnectionSink
	for _, room := range rooms {
		for id := range r.roomMembers[room] {
			if sink, ok := r.sessions[id]; ok {
				sinks = append(sinks, sink)
			}
		}
	}
	return sinks
}

// Count returns the number of connections currently in room.
func (r *Registry) Count(room domain.Room) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers[room])
}
