package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-store/contract"
	"chat-store/domain/event"
)

// Notifier fans a committed event out to every sink watching the room.
// Each delivery runs under the sink timeout so one stuck consumer
// cannot hold a mutation's caller hostage. Delivery failures are
// logged and swallowed: notifications are best effort, storage is the
// source of truth.
type Notifier struct {
	log         *slog.Logger
	registry    contract.IRegistry
	sinkTimeout time.Duration
}

func NewNotifier(log *slog.Logger, registry contract.IRegistry, sinkTimeout time.Duration) *Notifier {
	return &Notifier{log: log, registry: registry, sinkTimeout: sinkTimeout}
}

func (n *Notifier) Publish(ctx context.Context, e event.DomainEvent) {
	for _, sink := range n.registry.SinksForRoom(e.RoomID()) {
		sinkCtx, cancel := context.WithTimeout(ctx, n.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			n.log.Warn("Sink delivery failed", "room", e.RoomID(), "err", err)
		}
		cancel()
	}
}
