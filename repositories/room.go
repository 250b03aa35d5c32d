//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"chat-store/domain"
	"chat-store/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IRoomRepository interface {
	CreateRoom(name string) (domain.Room, error)
	GetRoom(room int) (domain.Room, error)
	RoomExists(room int) (bool, error)
	AddMember(room int, userID string) (domain.Membership, error)
	IsMember(room int, userID string) (bool, error)
	ListMembers(room int) ([]string, error)
	DeleteRoomCascade(room int) ([]uuid.UUID, error)
}

type RoomRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

// NewRoomRepository reserves the room id sequence. Callers must Close
// the repository to release unused ids back to the sequence.
func NewRoomRepository(db *badger.DB, log *slog.Logger) (*RoomRepository, error) {
	seq, err := db.GetSequence([]byte("seq:rooms"), 32)
	if err != nil {
		return nil, err
	}
	return &RoomRepository{db: db, seq: seq, log: log}, nil
}

func (r *RoomRepository) Close() error {
	return r.seq.Release()
}

// CreateRoom assigns the next sequence id and persists the room with an
// empty membership and message set.
func (r *RoomRepository) CreateRoom(name string) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, errors.ErrEmptyRoomName
	}
	next, err := r.seq.Next()
	if err != nil {
		return domain.Room{}, err
	}
	room := domain.Room{
		// Sequence values start at zero; room ids start at one.
		ID:        domain.RoomID(next + 1),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	data, err := encodeRoom(room)
	if err != nil {
		return domain.Room{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(int(room.ID)), data)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) GetRoom(room int) (domain.Room, error) {
	var found domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(room))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			found, err = DecodeRoom(value)
			return err
		})
	})
	if err != nil {
		return domain.Room{}, err
	}
	return found, nil
}

func (r *RoomRepository) RoomExists(room int) (bool, error) {
	_, err := r.GetRoom(room)
	if stderrors.Is(err, errors.ErrRoomNotFound) {
		return false, nil
	}
	return err == nil, err
}

// AddMember joins a user to a room. Both ends are checked inside the
// transaction; the membership record carries the join time.
func (r *RoomRepository) AddMember(room int, userID string) (domain.Membership, error) {
	membership := domain.Membership{
		Room:   domain.RoomID(room),
		UserID: userID,
		Since:  time.Now().UTC(),
	}
	data, err := encodeMembership(membership)
	if err != nil {
		return domain.Membership{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomKey(room)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrRoomNotFound
			}
			return err
		}
		if _, err := txn.Get(userKey(userID)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrUserNotFound
			}
			return err
		}
		return txn.Set(memberKey(room, userID), data)
	})
	if err != nil {
		return domain.Membership{}, err
	}
	return membership, nil
}

func (r *RoomRepository) IsMember(room int, userID string) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(room, userID))
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *RoomRepository) ListMembers(room int) ([]string, error) {
	prefix := memberPrefix(room)
	var members []string
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			members = append(members, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// DeleteRoomCascade removes the room, its memberships, and every owned
// message in a single transaction, and returns the ids of the deleted
// messages. Observers either see the room fully intact or fully gone.
// A Badger conflict means a writer raced the cascade; it surfaces as
// ErrTransactionConflict and the caller retries the whole deletion.
func (r *RoomRepository) DeleteRoomCascade(room int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Update(func(txn *badger.Txn) error {
		ids = nil
		if _, err := txn.Get(roomKey(room)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrRoomNotFound
			}
			return err
		}

		var err error
		ids, err = deleteMessagesTxn(txn, room)
		if err != nil {
			return err
		}

		prefix := memberPrefix(room)
		var memberKeys [][]byte
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			memberKeys = append(memberKeys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, key := range memberKeys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		return txn.Delete(roomKey(room))
	})
	if stderrors.Is(err, badger.ErrConflict) {
		return nil, errors.ErrTransactionConflict
	}
	if err != nil {
		return nil, err
	}
	r.log.Info("Room deleted", "room", room, "messages", len(ids))
	return ids, nil
}
