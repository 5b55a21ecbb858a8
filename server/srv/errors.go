package srv

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room full")
	ErrAlreadyInRoom = errors.New("already in room")
	ErrNotOwner      = errors.New("only owner can start")
	ErrNameRequired  = errors.New("display name required")
	ErrEmptyMessage  = errors.New("empty chat message")
	ErrBadScore      = errors.New("cleared count must be non-negative")
	ErrIDsExhausted  = errors.New("could not allocate a room id")
)
