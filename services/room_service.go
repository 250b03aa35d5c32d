//go:generate go run go.uber.org/mock/mockgen -source=room_service.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"time"

	"chat-store/contract"
	"chat-store/domain"
	"chat-store/domain/event"
	"chat-store/errors"
	"chat-store/repositories"
)

type IRoomService interface {
	CreateRoom(name string) (domain.Room, error)
	CreateUser(handle string) (domain.User, error)
	AddMember(room int, userID string) (domain.Membership, error)
	ResolveRoom(room int) (domain.Room, error)
	ResolveUser(userID string) (domain.User, error)
	DeleteRoom(ctx context.Context, cmd domain.DeleteRoomCommand) (domain.DeletionResult, error)
	Watch(subscriberID string, roomID domain.RoomID, sink contract.EventSink)
	Unwatch(subscriberID string, roomID domain.RoomID)
}

// RoomService is the lifecycle manager: it creates rooms, manages
// membership, and runs the cascade delete.
type RoomService struct {
	log      *slog.Logger
	rooms    repositories.IRoomRepository
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	registry contract.IRegistry
	notifier contract.INotifier
}

func NewRoomService(
	log *slog.Logger,
	rooms repositories.IRoomRepository,
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	registry contract.IRegistry,
	notifier contract.INotifier,
) *RoomService {
	return &RoomService{
		log:      log,
		rooms:    rooms,
		users:    users,
		messages: messages,
		registry: registry,
		notifier: notifier,
	}
}

func (s *RoomService) CreateRoom(name string) (domain.Room, error) {
	return s.rooms.CreateRoom(name)
}

func (s *RoomService) CreateUser(handle string) (domain.User, error) {
	return s.users.CreateUser(handle)
}

func (s *RoomService) AddMember(room int, userID string) (domain.Membership, error) {
	return s.rooms.AddMember(room, userID)
}

func (s *RoomService) ResolveRoom(room int) (domain.Room, error) {
	return s.rooms.GetRoom(room)
}

func (s *RoomService) ResolveUser(userID string) (domain.User, error) {
	return s.users.GetUser(userID)
}

// DeleteRoom runs the atomic cascade: the room, its memberships, and
// every owned message disappear in one storage transaction. Requesters
// must be members of the room even when an outer layer already gates
// the call. The search index is purged after the commit; it is derived
// data and never part of the transaction.
func (s *RoomService) DeleteRoom(ctx context.Context, cmd domain.DeleteRoomCommand) (domain.DeletionResult, error) {
	if _, err := s.rooms.GetRoom(cmd.Room); err != nil {
		return domain.DeletionResult{}, err
	}
	member, err := s.rooms.IsMember(cmd.Room, cmd.RequestedBy)
	if err != nil {
		return domain.DeletionResult{}, err
	}
	if !member {
		return domain.DeletionResult{}, errors.ErrForbidden
	}

	ids, err := s.rooms.DeleteRoomCascade(cmd.Room)
	if err != nil {
		return domain.DeletionResult{}, err
	}
	if err := s.messages.RemoveFromIndex(ids); err != nil {
		s.log.Warn("Search index purge failed", "room", cmd.Room, "err", err)
	}

	s.notifier.Publish(ctx, event.RoomDeleted{
		Room:         cmd.Room,
		MessageCount: len(ids),
		At:           time.Now().UTC(),
	})
	return domain.DeletionResult{DeletedMessages: len(ids)}, nil
}

// Watch attaches an external sink to a room's notifications.
func (s *RoomService) Watch(subscriberID string, roomID domain.RoomID, sink contract.EventSink) {
	s.registry.Subscribe(subscriberID, roomID, sink)
}

func (s *RoomService) Unwatch(subscriberID string, roomID domain.RoomID) {
	s.registry.Unsubscribe(subscriberID, roomID)
}
