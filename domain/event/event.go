// Package event defines the notifications the engine emits after a
// committed mutation. Sinks registered for a room receive them; the
// engine never blocks on a slow sink.
package event

import (
	"time"

	"chat-store/domain"

	"github.com/google/uuid"
)

type DomainEvent interface {
	RoomID() domain.RoomID
	OccurredAt() time.Time
}

// MessagePosted is emitted once a message has been committed to storage.
type MessagePosted struct {
	ID      uuid.UUID
	Room    int
	Author  string
	Content string
	Image   domain.ImageRef
	At      time.Time
}

func (m MessagePosted) RoomID() domain.RoomID {
	return domain.RoomID(m.Room)
}

func (m MessagePosted) OccurredAt() time.Time {
	return m.At
}

// RoomDeleted is emitted once the cascade has committed. MessageCount is
// the exact number of messages swept with the room.
type RoomDeleted struct {
	Room         int
	MessageCount int
	At           time.Time
}

func (r RoomDeleted) RoomID() domain.RoomID {
	return domain.RoomID(r.Room)
}

func (r RoomDeleted) OccurredAt() time.Time {
	return r.At
}
