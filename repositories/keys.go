package repositories

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Key layout in BadgerDB. Messages embed a zero-padded nanosecond
// timestamp so a prefix scan yields creation order without sorting,
// with the UUID as a collision disambiguator when two messages land
// on the same nanosecond.
//
//	room:{room_id}                          -> storedRoom
//	user:{user_id}                          -> storedUser
//	member:{room_id}:{user_id}              -> storedMembership
//	msg:{room_id}:{timestamp_padded}:{uuid} -> storedMessage
//	msgcount:{room_id}                      -> decimal message count
//
// The msgcount key is read and written by every append and by the
// cascade delete. That shared key is what lets Badger's conflict
// detection catch an append racing a cascade: prefix iteration alone
// would not conflict with the insert of a brand-new message key.
func roomKey(room int) []byte {
	return fmt.Appendf(nil, "room:%d", room)
}

func userKey(userID string) []byte {
	return []byte("user:" + userID)
}

func memberKey(room int, userID string) []byte {
	return fmt.Appendf(nil, "member:%d:%s", room, userID)
}

func memberPrefix(room int) []byte {
	return fmt.Appendf(nil, "member:%d:", room)
}

func msgKey(room int, unixNano int64, id uuid.UUID) []byte {
	return fmt.Appendf(nil, "msg:%d:%019d:%s", room, unixNano, id)
}

func msgPrefix(room int) []byte {
	return fmt.Appendf(nil, "msg:%d:", room)
}

func msgCountKey(room int) []byte {
	return fmt.Appendf(nil, "msgcount:%d", room)
}

// msgIDFromKey recovers the message UUID from the key suffix.
func msgIDFromKey(key string) (uuid.UUID, error) {
	parts := strings.SplitN(key, ":", 4)
	if len(parts) != 4 {
		return uuid.Nil, fmt.Errorf("malformed message key %q", key)
	}
	return uuid.Parse(parts[3])
}
