// Package runtime carries the engine's notification plumbing: which
// sinks watch which room, and the bounded fan-out of committed events.
// No business rules live here.
package runtime

import (
	"sync"

	"chat-store/contract"
	"chat-store/domain"
)

// Registry tracks which sinks watch which room. A subscriber watching
// several rooms registers once per room; re-subscribing to the same
// room replaces the previous sink.
type Registry struct {
	mu       sync.RWMutex
	watchers map[domain.RoomID]map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{watchers: make(map[domain.RoomID]map[string]contract.EventSink)}
}

// SinksForRoom returns the sinks watching the room, nil when nobody
// does.
func (r *Registry) SinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, sink := range r.watchers[roomID] {
		sinks = append(sinks, sink)
	}
	return sinks
}

func (r *Registry) Subscribe(subscriberID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watchers[roomID] == nil {
		r.watchers[roomID] = make(map[string]contract.EventSink)
	}
	r.watchers[roomID][subscriberID] = sink
}

// Unsubscribe detaches the subscriber from one room; their sinks in
// other rooms stay attached. The last watcher leaving a room drops the
// room's entry so the map does not grow with dead rooms.
func (r *Registry) Unsubscribe(subscriberID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, ok := r.watchers[roomID]
	if !ok {
		return
	}
	delete(watchers, subscriberID)
	if len(watchers) == 0 {
		delete(r.watchers, roomID)
	}
}
