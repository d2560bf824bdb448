package registry

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"chessroom/internal/dependencies/clock"
	"chessroom/internal/model"
	"chessroom/internal/storage"
)

// Registry owns creation, lookup, and deletion of active rooms
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new Registry
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Create inserts a fresh room in the Waiting state. Codes are uuid v4, so
// no existence check is needed before insertion.
func (r *Registry) Create(ctx context.Context, duration int64) (*model.Room, error) {
	room := &model.Room{
		Code:      model.RoomCode(uuid.NewString()),
		Status:    model.RoomStatusWaiting,
		Duration:  duration,
		Members:   []model.Player{},
		CreatedAt: r.clock.Now(),
	}

	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created", slog.String("code", string(room.Code)))
	return room, nil
}

// Get retrieves a room by code
func (r *Registry) Get(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return r.storage.GetRoom(ctx, code)
}

// Delete removes a room and its chat log. Storage-level only; sweeping a
// live room goes through the session manager, which also tears down the
// room's transport and transient state.
func (r *Registry) Delete(ctx context.Context, code model.RoomCode) error {
	if err := r.storage.DeleteRoom(ctx, code); err != nil {
		return err
	}
	if err := r.storage.DeleteChatLog(ctx, code); err != nil {
		return err
	}

	r.logger.Info("room deleted", slog.String("code", string(code)))
	return nil
}
