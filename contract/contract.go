//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"

	"chat-store/domain"
	"chat-store/domain/event"
)

// EventSink receives committed-mutation notifications for a room.
// Implementations live outside the engine (websocket pushers, audit
// trails, test probes) and must tolerate being called concurrently.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	SinksForRoom(roomID domain.RoomID) []EventSink
	Subscribe(subscriberID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(subscriberID string, roomID domain.RoomID)
}

type INotifier interface {
	Publish(ctx context.Context, e event.DomainEvent)
}
