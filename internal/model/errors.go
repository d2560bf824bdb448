package model

import "errors"

// Common errors used across the application. All are recoverable and
// surfaced to the requesting connection only; none are process-fatal.
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomClosed   = errors.New("room is closed")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("user is not in room")

	// Connection errors
	ErrBindingNotFound = errors.New("connection binding not found")
)
