package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"chat-store/domain"
	"chat-store/domain/event"
	"chat-store/validation"

	"github.com/stretchr/testify/require"
)

func TestAppend_EmptyBody_IsRejected_And_Nothing_Persisted(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	_, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: user.ID,
	})

	var violations *validation.Error
	req.ErrorAs(err, &violations)
	req.True(violations.Has(validation.EmptyContent))

	count, err := stack.messages.MessageCount(int(room.ID))
	req.NoError(err)
	req.Zero(count)
}

func TestAppend_ContentOnly_Succeeds(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	message, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: user.ID, Content: "hello",
	})
	req.NoError(err)
	req.Equal("hello", message.Content)
	req.Empty(message.Image)
}

func TestAppend_ImageOnly_Succeeds(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	message, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: user.ID, Image: "blob-7f3a",
	})
	req.NoError(err)
	req.Empty(message.Content)
	req.Equal(domain.ImageRef("blob-7f3a"), message.Image)
}

func TestAppend_ContentAndImage_Succeeds(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	message, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: user.ID, Content: "look", Image: "blob-7f3a",
	})
	req.NoError(err)
	req.True(message.HasBody())
}

func TestAppend_UnknownRoom_ReportsMissingRoom(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	_, user := stack.seed(t)

	_, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: 999, UserID: user.ID, Content: "hello",
	})

	var violations *validation.Error
	req.ErrorAs(err, &violations)
	req.True(violations.Has(validation.MissingRoom))
}

func TestAppend_UnknownUser_ReportsMissingUser(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, _ := stack.seed(t)

	_, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: "ghost", Content: "hello",
	})

	var violations *validation.Error
	req.ErrorAs(err, &violations)
	req.True(violations.Has(validation.MissingUser))
}

// A single rejected append names every violation, not only the first.
func TestAppend_CombinedViolations(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	stack.seed(t)

	_, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: 999, UserID: "ghost",
	})

	var violations *validation.Error
	req.ErrorAs(err, &violations)
	req.True(violations.Has(validation.MissingRoom))
	req.True(violations.Has(validation.MissingUser))
	req.True(violations.Has(validation.EmptyContent))
}

func TestAppend_RoundTrip_And_Count(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	before, err := stack.messages.MessageCount(int(room.ID))
	req.NoError(err)

	_, err = stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: user.ID, Content: "test",
	})
	req.NoError(err)

	messages, _, err := stack.messages.ListByRoom(domain.GetMessagesCommand{Room: int(room.ID)})
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("test", messages[0].Content)
	req.Equal(user.ID, messages[0].SenderID)

	after, err := stack.messages.MessageCount(int(room.ID))
	req.NoError(err)
	req.Equal(before+1, after)
}

// Appends are not idempotent: identical commands create distinct messages.
func TestAppend_Twice_CreatesDistinctMessages(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	cmd := domain.AppendMessageCommand{Room: int(room.ID), UserID: user.ID, Content: "again"}
	first, err := stack.messages.Append(context.Background(), cmd)
	req.NoError(err)
	second, err := stack.messages.Append(context.Background(), cmd)
	req.NoError(err)

	req.NotEqual(first.ID, second.ID)

	count, err := stack.messages.MessageCount(int(room.ID))
	req.NoError(err)
	req.Equal(2, count)
}

func TestAppend_Concurrent_NoLostWrites(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	const writers = 16
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = stack.messages.Append(context.Background(), domain.AppendMessageCommand{
				Room: int(room.ID), UserID: user.ID, Content: fmt.Sprintf("message %d", i),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		req.NoError(err, "writer %d", i)
	}

	messages, _, err := stack.messages.ListByRoom(domain.GetMessagesCommand{Room: int(room.ID)})
	req.NoError(err)
	req.Len(messages, writers)

	seen := make(map[string]struct{}, writers)
	for _, message := range messages {
		seen[message.ID.String()] = struct{}{}
	}
	req.Len(seen, writers)

	count, err := stack.messages.MessageCount(int(room.ID))
	req.NoError(err)
	req.Equal(writers, count)
}

func TestAppend_Notifies_Room_Sinks(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	sink := &recordingSink{}
	stack.rooms.Watch(user.ID, room.ID, sink)

	_, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
		Room: int(room.ID), UserID: user.ID, Content: "ping",
	})
	req.NoError(err)

	events := sink.Events()
	req.Len(events, 1)
	posted, ok := events[0].(event.MessagePosted)
	req.True(ok)
	req.Equal("ping", posted.Content)
	req.Equal(user.ID, posted.Author)
}

func TestSearch_FindsOnlyMatchingContent(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t)
	room, user := stack.seed(t)

	for _, content := range []string{"deploy is green", "lunch at noon", "deploy rollback done"} {
		_, err := stack.messages.Append(context.Background(), domain.AppendMessageCommand{
			Room: int(room.ID), UserID: user.ID, Content: content,
		})
		req.NoError(err)
	}

	hits, err := stack.messages.Search(context.Background(), domain.SearchMessagesCommand{
		Room: int(room.ID), Terms: "deploy",
	})
	req.NoError(err)
	req.Len(hits, 2)
}
