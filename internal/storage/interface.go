package storage

import (
	"context"

	"chessroom/internal/model"
)

// Storage defines the interface for room, chat log, and connection state.
// The system is ephemeral by design: implementations hold everything in
// process memory and nothing survives a restart.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error

	// Chat log operations
	AppendChatMessage(ctx context.Context, code model.RoomCode, msg model.ChatMessage) error
	GetChatLog(ctx context.Context, code model.RoomCode) ([]model.ChatMessage, error)
	DeleteChatLog(ctx context.Context, code model.RoomCode) error

	// Connection binding operations
	SaveBinding(ctx context.Context, binding *model.ConnectionBinding) error
	GetBinding(ctx context.Context, connID model.ConnID) (*model.ConnectionBinding, error)
	FindBindingByUser(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.ConnectionBinding, error)
	DeleteBinding(ctx context.Context, connID model.ConnID) error
}
