package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chat-store/domain"
	"chat-store/domain/event"
	"chat-store/repositories"
	"chat-store/runtime"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type testStack struct {
	messages *MessageService
	rooms    *RoomService
	registry *runtime.Registry
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	index, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	messageRepository := repositories.NewMessageRepository(db, index, log, nil)
	roomRepository, err := repositories.NewRoomRepository(db, log)
	req.NoError(err)
	t.Cleanup(func() { _ = roomRepository.Close() })
	userRepository := repositories.NewUserRepository(db)

	registry := runtime.NewRegistry()
	notifier := runtime.NewNotifier(log, registry, time.Second)

	return &testStack{
		messages: NewMessageService(log, messageRepository, roomRepository, userRepository, notifier),
		rooms:    NewRoomService(log, roomRepository, userRepository, messageRepository, registry, notifier),
		registry: registry,
	}
}

func (s *testStack) seed(t *testing.T) (domain.Room, domain.User) {
	t.Helper()
	req := require.New(t)
	room, err := s.rooms.CreateRoom("general")
	req.NoError(err)
	user, err := s.rooms.CreateUser("alice")
	req.NoError(err)
	_, err = s.rooms.AddMember(int(room.ID), user.ID)
	req.NoError(err)
	return room, user
}

// recordingSink captures delivered events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent{}, s.events...)
}
