package errors

import "fmt"

var (
	ErrRoomNotFound        = fmt.Errorf("room not found")
	ErrUserNotFound        = fmt.Errorf("user not found")
	ErrForbidden           = fmt.Errorf("requester is not a member of the room")
	ErrTransactionConflict = fmt.Errorf("storage transaction conflict, retry the operation")
	ErrEmptyRoomName       = fmt.Errorf("room name is empty")
)
