package domain

import "time"

type RoomID int

// Room is the exclusive owner of its messages. It is created by the
// lifecycle manager and destroyed only through the cascade delete,
// which removes every owned message in the same transaction.
type Room struct {
	ID        RoomID
	Name      string
	CreatedAt time.Time
}

// Membership joins a user to a room. It has no lifecycle of its own:
// it exists while both ends exist and is swept by the room cascade.
type Membership struct {
	Room   RoomID
	UserID string
	Since  time.Time
}

// DeletionResult reports the outcome of a room cascade delete.
type DeletionResult struct {
	DeletedMessages int
}
