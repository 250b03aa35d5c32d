// Package domain contains core concepts of the message store.
// This file defines Message records and related rules.
// Messages are immutable once persisted and validated before any write.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImageRef is an opaque handle to an externally stored blob.
// The engine never dereferences or inspects it.
type ImageRef string

// Message represents an immutable record posted by a user into a room.
// At least one of Content or Image must be set.
type Message struct {
	ID        uuid.UUID // unique identifier
	Room      RoomID
	SenderID  string
	Content   string
	Image     ImageRef
	CreatedAt time.Time
}

// HasBody reports whether the message carries any payload at all.
func (m Message) HasBody() bool {
	return m.Content != "" || m.Image != ""
}
