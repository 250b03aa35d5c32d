package repositories

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"chat-store/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_CreateRoom_Assigns_Distinct_Ids(t *testing.T) {
	req := require.New(t)
	_, rooms, _ := newTestStore(t)

	first, err := rooms.CreateRoom("general")
	req.NoError(err)
	second, err := rooms.CreateRoom("random")
	req.NoError(err)

	req.NotEqual(first.ID, second.ID)
	req.Positive(int(first.ID))
	req.Positive(int(second.ID))

	found, err := rooms.GetRoom(int(first.ID))
	req.NoError(err)
	req.Equal("general", found.Name)
}

func Test_CreateRoom_Rejects_Blank_Name(t *testing.T) {
	req := require.New(t)
	_, rooms, _ := newTestStore(t)

	_, err := rooms.CreateRoom("   ")
	req.ErrorIs(err, errors.ErrEmptyRoomName)
}

func Test_GetRoom_Unknown_Id(t *testing.T) {
	req := require.New(t)
	_, rooms, _ := newTestStore(t)

	_, err := rooms.GetRoom(999)
	req.ErrorIs(err, errors.ErrRoomNotFound)

	exists, err := rooms.RoomExists(999)
	req.NoError(err)
	req.False(exists)
}

func Test_AddMember_And_Lookup(t *testing.T) {
	req := require.New(t)
	_, rooms, users := newTestStore(t)
	room, user := seedRoomAndUser(t, rooms, users)

	membership, err := rooms.AddMember(int(room.ID), user.ID)
	req.NoError(err)
	req.Equal(room.ID, membership.Room)
	req.Equal(user.ID, membership.UserID)

	isMember, err := rooms.IsMember(int(room.ID), user.ID)
	req.NoError(err)
	req.True(isMember)

	isMember, err = rooms.IsMember(int(room.ID), "ghost")
	req.NoError(err)
	req.False(isMember)

	members, err := rooms.ListMembers(int(room.ID))
	req.NoError(err)
	req.Equal([]string{user.ID}, members)
}

func Test_AddMember_Checks_Both_Ends(t *testing.T) {
	req := require.New(t)
	_, rooms, users := newTestStore(t)
	room, user := seedRoomAndUser(t, rooms, users)

	_, err := rooms.AddMember(999, user.ID)
	req.ErrorIs(err, errors.ErrRoomNotFound)

	_, err = rooms.AddMember(int(room.ID), "ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_DeleteRoomCascade_Sweeps_Messages_And_Memberships(t *testing.T) {
	req := require.New(t)
	messages, rooms, users := newTestStore(t)
	room, user := seedRoomAndUser(t, rooms, users)
	_, err := rooms.AddMember(int(room.ID), user.ID)
	req.NoError(err)

	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		req.NoError(messages.StoreMessage(DiskMessage{
			ID: uuid.New(), Room: int(room.ID), Author: user.ID,
			Content: "doomed", At: at.Add(time.Duration(i) * time.Second),
		}))
	}

	ids, err := rooms.DeleteRoomCascade(int(room.ID))
	req.NoError(err)
	req.Len(ids, 5)

	_, err = rooms.GetRoom(int(room.ID))
	req.ErrorIs(err, errors.ErrRoomNotFound)

	fetched, _, err := messages.GetMessages(int(room.ID), nil)
	req.NoError(err)
	req.Empty(fetched)

	members, err := rooms.ListMembers(int(room.ID))
	req.NoError(err)
	req.Empty(members)
}

func Test_DeleteRoomCascade_Unknown_Room(t *testing.T) {
	req := require.New(t)
	_, rooms, _ := newTestStore(t)

	_, err := rooms.DeleteRoomCascade(999)
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

// An append into a room whose cascade already committed must come back
// as a missing room, never land as an orphan message.
func Test_Store_After_Cascade_Reports_Missing_Room(t *testing.T) {
	req := require.New(t)
	messages, rooms, users := newTestStore(t)
	room, user := seedRoomAndUser(t, rooms, users)

	_, err := rooms.DeleteRoomCascade(int(room.ID))
	req.NoError(err)

	err = messages.StoreMessage(DiskMessage{
		ID: uuid.New(), Room: int(room.ID), Author: user.ID,
		Content: "too late", At: time.Now().UTC(),
	})
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

// An append racing the cascade must either be swept with the room or
// rejected with a missing room; it must never outlive the deletion.
// The bulk of messages widens the cascade's sweep window.
func Test_Append_Racing_Cascade_Leaves_No_Orphans(t *testing.T) {
	req := require.New(t)
	messages, rooms, users := newTestStore(t)
	user, err := users.CreateUser("alice")
	req.NoError(err)

	for round := 0; round < 60; round++ {
		room, err := rooms.CreateRoom(fmt.Sprintf("doomed-%d", round))
		req.NoError(err)

		at := time.Now().UTC()
		for i := 0; i < 40; i++ {
			req.NoError(messages.StoreMessage(DiskMessage{
				ID: uuid.New(), Room: int(room.ID), Author: user.ID,
				Content: "bulk", At: at.Add(time.Duration(i) * time.Millisecond),
			}))
		}

		appended := make(chan error, 1)
		go func() {
			appended <- messages.StoreMessage(DiskMessage{
				ID: uuid.New(), Room: int(room.ID), Author: user.ID,
				Content: "racer", At: time.Now().UTC(),
			})
		}()

		var cascadeErr error
		for {
			_, cascadeErr = rooms.DeleteRoomCascade(int(room.ID))
			if !stderrors.Is(cascadeErr, errors.ErrTransactionConflict) {
				break
			}
		}
		req.NoError(cascadeErr)

		if appendErr := <-appended; appendErr != nil {
			req.ErrorIs(appendErr, errors.ErrRoomNotFound, "round %d", round)
		}

		fetched, _, err := messages.GetMessages(int(room.ID), nil)
		req.NoError(err)
		req.Empty(fetched, "round %d", round)

		count, err := messages.CountByRoom(int(room.ID))
		req.NoError(err)
		req.Zero(count, "round %d", round)
	}
}

func Test_Users_Roundtrip(t *testing.T) {
	req := require.New(t)
	_, _, users := newTestStore(t)

	created, err := users.CreateUser("bob")
	req.NoError(err)

	found, err := users.GetUser(created.ID)
	req.NoError(err)
	req.Equal(created, found)

	exists, err := users.UserExists(created.ID)
	req.NoError(err)
	req.True(exists)

	_, err = users.GetUser("ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}
