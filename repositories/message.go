//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"chat-store/errors"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// maxTxnRetries bounds how often a write is replayed after a Badger
// conflict before the caller is told to retry the whole operation.
const maxTxnRetries = 50

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(room int, cursor *string) ([]DiskMessage, *string, error)
	DeleteAllForRoom(room int) (int, error)
	CountByRoom(room int) (int, error)
	SearchMessages(ctx context.Context, room int, terms string, limit int) ([]SearchHit, error)
	RemoveFromIndex(ids []uuid.UUID) error
}

type MessageRepository struct {
	db            *badger.DB
	index         *bluge.Writer
	log           *slog.Logger
	limitMessages *int
}

// NewMessageRepository wires the message store. index may be nil when
// full-text search is not wanted (inspection tools, some tests).
func NewMessageRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, index: index, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID      uuid.UUID
	Room    int
	Author  string
	Content string
	Image   string
	At      time.Time
}

// SearchHit is a full-text match built from the index's stored fields.
type SearchHit struct {
	ID      uuid.UUID
	Author  string
	Content string
}

// StoreMessage persists a message. The room and user keys are re-read
// inside the transaction so a message can never commit into a room that
// a concurrent cascade already removed: the cascade rewrites the room's
// message count key, which makes one of the two transactions fail with
// a conflict, and the replay observes the missing room.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	data, err := encodeMessage(message)
	if err != nil {
		return err
	}
	key := msgKey(message.Room, message.At.UnixNano(), message.ID)

	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = m.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(roomKey(message.Room)); err != nil {
				if stderrors.Is(err, badger.ErrKeyNotFound) {
					return errors.ErrRoomNotFound
				}
				return err
			}
			if _, err := txn.Get(userKey(message.Author)); err != nil {
				if stderrors.Is(err, badger.ErrKeyNotFound) {
					return errors.ErrUserNotFound
				}
				return err
			}
			count, err := readMessageCount(txn, message.Room)
			if err != nil {
				return err
			}
			if err = writeMessageCount(txn, message.Room, count+1); err != nil {
				return err
			}
			return txn.Set(key, data)
		})
		if !stderrors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if stderrors.Is(err, badger.ErrConflict) {
		return errors.ErrTransactionConflict
	}
	if err != nil {
		return err
	}
	return m.indexMessage(message)
}

// GetMessages retrieves messages for a room in creation order using a
// prefix scan; the padded timestamp in the key makes the scan naturally
// chronological. An unknown or empty room yields an empty result, not
// an error. A non-nil cursor is returned only when the configured limit
// cut the page short; it resumes the scan after the last message.
func (m MessageRepository) GetMessages(room int, cursor *string) ([]DiskMessage, *string, error) {
	var raw [][]byte
	var lastKey string
	var truncated bool
	prefix := msgPrefix(room)

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if cursor != nil {
			seekKey = append(append([]byte{}, prefix...), []byte(*cursor)...)
		}
		it.Seek(seekKey)

		// The cursor points at a message the caller already has.
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(raw) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				truncated = true
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			if err := item.Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]DiskMessage, 0, len(raw))
	for _, data := range raw {
		message, err := DecodeMessage(data)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	var next *string
	if truncated {
		next = &lastKey
	}
	return messages, next, nil
}

// CountByRoom returns the committed message count of a room. Zero for
// rooms that never held a message or do not exist.
func (m MessageRepository) CountByRoom(room int) (int, error) {
	var count int
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = readMessageCount(txn, room)
		return err
	})
	return count, err
}

// DeleteAllForRoom removes every message bound to the room and returns
// the exact number removed. The room record itself is untouched; the
// lifecycle cascade uses the transaction-scoped variant instead so the
// room and its messages disappear together.
func (m MessageRepository) DeleteAllForRoom(room int) (int, error) {
	var ids []uuid.UUID
	err := m.db.Update(func(txn *badger.Txn) error {
		var err error
		ids, err = deleteMessagesTxn(txn, room)
		return err
	})
	if stderrors.Is(err, badger.ErrConflict) {
		return 0, errors.ErrTransactionConflict
	}
	if err != nil {
		return 0, err
	}
	if err := m.RemoveFromIndex(ids); err != nil {
		return len(ids), err
	}
	return len(ids), nil
}

// deleteMessagesTxn sweeps a room's messages and its count key inside
// the caller's transaction. Keys are collected before deletion; the
// iterator must not observe its own writes.
func deleteMessagesTxn(txn *badger.Txn, room int) ([]uuid.UUID, error) {
	// Reading the count key puts it in this transaction's conflict
	// window: every append rewrites it, so an append committing during
	// the sweep fails whichever side commits second. Deleting the key
	// alone would not, Badger only checks conflicts against reads.
	if _, err := readMessageCount(txn, room); err != nil {
		return nil, err
	}

	prefix := msgPrefix(room)
	var keys [][]byte
	var ids []uuid.UUID

	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		id, err := msgIDFromKey(string(key))
		if err != nil {
			it.Close()
			return nil, err
		}
		keys = append(keys, key)
		ids = append(ids, id)
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return nil, err
		}
	}
	if err := txn.Delete(msgCountKey(room)); err != nil {
		return nil, err
	}
	return ids, nil
}

func readMessageCount(txn *badger.Txn, room int) (int, error) {
	item, err := txn.Get(msgCountKey(room))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var count int
	err = item.Value(func(value []byte) error {
		count, err = strconv.Atoi(string(value))
		return err
	})
	return count, err
}

func writeMessageCount(txn *badger.Txn, room, count int) error {
	return txn.Set(msgCountKey(room), []byte(strconv.Itoa(count)))
}

func (m MessageRepository) indexMessage(message DiskMessage) error {
	if m.index == nil {
		return nil
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("room", strconv.Itoa(message.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("author", message.Author).StoreValue()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.At))
	return m.index.Update(doc.ID(), doc)
}

// RemoveFromIndex drops the search documents of deleted messages. The
// index is derived data: it is purged after the storage transaction
// commits, never inside it.
func (m MessageRepository) RemoveFromIndex(ids []uuid.UUID) error {
	if m.index == nil {
		return nil
	}
	for _, id := range ids {
		doc := bluge.NewDocument(id.String())
		if err := m.index.Delete(doc.ID()); err != nil {
			return err
		}
	}
	return nil
}

// SearchMessages runs a full-text match over a room's indexed content.
func (m MessageRepository) SearchMessages(ctx context.Context, room int, terms string, limit int) ([]SearchHit, error) {
	if m.index == nil {
		return nil, nil
	}
	reader, err := m.index.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(strconv.Itoa(room)).SetField("room")).
		AddMust(bluge.NewMatchQuery(terms).SetField("content"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID, _ = uuid.Parse(string(value))
			case "author":
				hit.Author = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}
