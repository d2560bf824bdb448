package session

import (
	"errors"

	"chessroom/internal/model"
)

// Wire error codes
const (
	CodeRoomNotFound  = "ROOM_NOT_FOUND"
	CodeRoomClosed    = "ROOM_CLOSED"
	CodeRoomFull      = "ROOM_FULL"
	CodeNotInRoom     = "NOT_IN_ROOM"
	CodeInternalError = "INTERNAL_ERROR"
)

// errorPayload converts an error to a structured failure payload
func errorPayload(err error) model.ErrorPayload {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return model.ErrorPayload{Code: CodeRoomNotFound, Message: "Room not found"}
	case errors.Is(err, model.ErrRoomClosed):
		return model.ErrorPayload{Code: CodeRoomClosed, Message: "Room is closed"}
	case errors.Is(err, model.ErrRoomFull):
		return model.ErrorPayload{Code: CodeRoomFull, Message: "Room already fulled"}
	case errors.Is(err, model.ErrNotInRoom):
		return model.ErrorPayload{Code: CodeNotInRoom, Message: "User is not in this room"}
	default:
		return model.ErrorPayload{Code: CodeInternalError, Message: "Internal server error"}
	}
}
