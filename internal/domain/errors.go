package domain

import "errors"

var (
	// Surfaced to the caller as an error event / HTTP status.
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrAlreadyInRoom      = errors.New("already in a room")
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")

	// Dropped silently at the transport boundary. Kept as distinct
	// values so the policy stays testable.
	ErrNotHost   = errors.New("not the room host")
	ErrNotInRoom = errors.New("not in a room")
)

// Surfaced reports whether an error should be sent back to the
// originating connection. Unauthorized host commands and chat from
// non-members are intentionally ignored.
func Surfaced(err error) bool {
	switch {
	case errors.Is(err, ErrNotHost), errors.Is(err, ErrNotInRoom):
		return false
	default:
		return true
	}
}
