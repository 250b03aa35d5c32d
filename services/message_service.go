//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"chat-store/contract"
	"chat-store/domain"
	"chat-store/domain/event"
	"chat-store/errors"
	"chat-store/repositories"
	"chat-store/validation"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageService interface {
	Append(ctx context.Context, cmd domain.AppendMessageCommand) (domain.Message, error)
	ListByRoom(cmd domain.GetMessagesCommand) ([]domain.Message, *string, error)
	Search(ctx context.Context, cmd domain.SearchMessagesCommand) ([]repositories.SearchHit, error)
	MessageCount(room int) (int, error)
}

type MessageService struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	rooms    repositories.IRoomRepository
	users    repositories.IUserRepository
	notifier contract.INotifier
}

func NewMessageService(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	rooms repositories.IRoomRepository,
	users repositories.IUserRepository,
	notifier contract.INotifier,
) *MessageService {
	return &MessageService{
		log:      log,
		messages: messages,
		rooms:    rooms,
		users:    users,
		notifier: notifier,
	}
}

// Append validates the candidate against current registry state, then
// persists it. Validation collects every violation before reporting:
// an append into a missing room with an empty body names both kinds.
// The store re-checks the references inside its transaction, so a
// room deleted between validation and commit still comes back as a
// MissingRoom violation, never as a half-applied write.
func (s *MessageService) Append(ctx context.Context, cmd domain.AppendMessageCommand) (domain.Message, error) {
	roomExists, err := s.rooms.RoomExists(cmd.Room)
	if err != nil {
		return domain.Message{}, err
	}
	userExists, err := s.users.UserExists(cmd.UserID)
	if err != nil {
		return domain.Message{}, err
	}
	if kinds := validation.CheckMessage(cmd, roomExists, userExists); len(kinds) > 0 {
		return domain.Message{}, validation.NewError(kinds)
	}

	record := repositories.DiskMessage{
		ID:      uuid.New(),
		Room:    cmd.Room,
		Author:  cmd.UserID,
		Content: cmd.Content,
		Image:   string(cmd.Image),
		At:      time.Now().UTC(),
	}
	if err := s.messages.StoreMessage(record); err != nil {
		switch {
		case stderrors.Is(err, errors.ErrRoomNotFound):
			return domain.Message{}, validation.NewError([]validation.Kind{validation.MissingRoom})
		case stderrors.Is(err, errors.ErrUserNotFound):
			return domain.Message{}, validation.NewError([]validation.Kind{validation.MissingUser})
		default:
			return domain.Message{}, err
		}
	}

	s.notifier.Publish(ctx, event.MessagePosted{
		ID:      record.ID,
		Room:    record.Room,
		Author:  record.Author,
		Content: record.Content,
		Image:   domain.ImageRef(record.Image),
		At:      record.At,
	})
	return fromDiskMessage(record), nil
}

// ListByRoom returns a room's messages in creation order with a resume
// cursor. An unknown room yields an empty page, not an error.
func (s *MessageService) ListByRoom(cmd domain.GetMessagesCommand) ([]domain.Message, *string, error) {
	records, cursor, err := s.messages.GetMessages(cmd.Room, cmd.Cursor)
	if err != nil {
		return nil, nil, err
	}
	messages := lo.Map(records, func(record repositories.DiskMessage, _ int) domain.Message {
		return fromDiskMessage(record)
	})
	return messages, cursor, nil
}

func (s *MessageService) Search(ctx context.Context, cmd domain.SearchMessagesCommand) ([]repositories.SearchHit, error) {
	limit := cmd.Limit
	if limit <= 0 {
		limit = 10
	}
	return s.messages.SearchMessages(ctx, cmd.Room, cmd.Terms, limit)
}

func (s *MessageService) MessageCount(room int) (int, error) {
	return s.messages.CountByRoom(room)
}

func fromDiskMessage(record repositories.DiskMessage) domain.Message {
	return domain.Message{
		ID:        record.ID,
		Room:      domain.RoomID(record.Room),
		SenderID:  record.Author,
		Content:   record.Content,
		Image:     domain.ImageRef(record.Image),
		CreatedAt: record.At,
	}
}
