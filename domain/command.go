package domain

type Command interface {
	RoomID() RoomID
}

// AppendMessageCommand carries a candidate message. CreatedAt is assigned
// by the store at commit time, never by the caller.
type AppendMessageCommand struct {
	Room    int
	UserID  string
	Content string
	Image   ImageRef
}

func (c AppendMessageCommand) RoomID() RoomID {
	return RoomID(c.Room)
}

type GetMessagesCommand struct {
	Room   int
	Cursor *string
}

func (c GetMessagesCommand) RoomID() RoomID {
	return RoomID(c.Room)
}

type SearchMessagesCommand struct {
	Room  int
	Terms string
	Limit int
}

func (c SearchMessagesCommand) RoomID() RoomID {
	return RoomID(c.Room)
}

// DeleteRoomCommand requests the cascade delete of a room. RequestedBy
// must be a member of the room; the check is enforced by the lifecycle
// manager even when an outer layer also enforces it.
type DeleteRoomCommand struct {
	Room        int
	RequestedBy string
}

func (c DeleteRoomCommand) RoomID() RoomID {
	return RoomID(c.Room)
}
