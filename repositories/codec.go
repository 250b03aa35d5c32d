package repositories

import (
	"time"

	"chat-store/domain"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Stored records are encoded with CBOR. Timestamps are kept as unix
// nanoseconds so round-trips stay exact regardless of time.Location.

type storedMessage struct {
	ID      string `cbor:"id"`
	Room    int    `cbor:"room"`
	Author  string `cbor:"author"`
	Content string `cbor:"content,omitempty"`
	Image   string `cbor:"image,omitempty"`
	At      int64  `cbor:"at"`
}

type storedRoom struct {
	ID        int    `cbor:"id"`
	Name      string `cbor:"name"`
	CreatedAt int64  `cbor:"created_at"`
}

type storedUser struct {
	ID        string `cbor:"id"`
	Handle    string `cbor:"handle"`
	CreatedAt int64  `cbor:"created_at"`
}

type storedMembership struct {
	Room   int    `cbor:"room"`
	UserID string `cbor:"user_id"`
	Since  int64  `cbor:"since"`
}

func encodeMessage(message DiskMessage) ([]byte, error) {
	return cbor.Marshal(storedMessage{
		ID:      message.ID.String(),
		Room:    message.Room,
		Author:  message.Author,
		Content: message.Content,
		Image:   message.Image,
		At:      message.At.UnixNano(),
	})
}

func DecodeMessage(data []byte) (DiskMessage, error) {
	var record storedMessage
	if err := cbor.Unmarshal(data, &record); err != nil {
		return DiskMessage{}, err
	}
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return DiskMessage{}, err
	}
	return DiskMessage{
		ID:      parsedID,
		Room:    record.Room,
		Author:  record.Author,
		Content: record.Content,
		Image:   record.Image,
		At:      time.Unix(0, record.At).UTC(),
	}, nil
}

func encodeRoom(room domain.Room) ([]byte, error) {
	return cbor.Marshal(storedRoom{
		ID:        int(room.ID),
		Name:      room.Name,
		CreatedAt: room.CreatedAt.UnixNano(),
	})
}

func DecodeRoom(data []byte) (domain.Room, error) {
	var record storedRoom
	if err := cbor.Unmarshal(data, &record); err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:        domain.RoomID(record.ID),
		Name:      record.Name,
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}

func encodeUser(user domain.User) ([]byte, error) {
	return cbor.Marshal(storedUser{
		ID:        user.ID,
		Handle:    user.Handle,
		CreatedAt: user.CreatedAt.UnixNano(),
	})
}

func DecodeUser(data []byte) (domain.User, error) {
	var record storedUser
	if err := cbor.Unmarshal(data, &record); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        record.ID,
		Handle:    record.Handle,
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}

func encodeMembership(membership domain.Membership) ([]byte, error) {
	return cbor.Marshal(storedMembership{
		Room:   int(membership.Room),
		UserID: membership.UserID,
		Since:  membership.Since.UnixNano(),
	})
}

func DecodeMembership(data []byte) (domain.Membership, error) {
	var record storedMembership
	if err := cbor.Unmarshal(data, &record); err != nil {
		return domain.Membership{}, err
	}
	return domain.Membership{
		Room:   domain.RoomID(record.Room),
		UserID: record.UserID,
		Since:  time.Unix(0, record.Since).UTC(),
	}, nil
}
