package memory

import (
	"context"
	"sync"

	"chessroom/internal/model"
	"chessroom/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms    map[model.RoomCode]*model.Room
	chatLogs map[model.RoomCode][]model.ChatMessage
	bindings map[model.ConnID]*model.ConnectionBinding
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:    make(map[model.RoomCode]*model.Room),
		chatLogs: make(map[model.RoomCode][]model.ChatMessage),
		bindings: make(map[model.ConnID]*model.ConnectionBinding),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

// Chat log operations

func (s *Storage) AppendChatMessage(ctx context.Context, code model.RoomCode, msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatLogs[code] = append(s.chatLogs[code], msg)
	return nil
}

func (s *Storage) GetChatLog(ctx context.Context, code model.RoomCode) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.chatLogs[code]
	if !ok {
		return nil, nil
	}
	result := make([]model.ChatMessage, len(log))
	copy(result, log)
	return result, nil
}

func (s *Storage) DeleteChatLog(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chatLogs, code)
	return nil
}

// Connection binding operations

func (s *Storage) SaveBinding(ctx context.Context, binding *model.ConnectionBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[binding.ConnID] = binding
	return nil
}

func (s *Storage) GetBinding(ctx context.Context, connID model.ConnID) (*model.ConnectionBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	binding, ok := s.bindings[connID]
	if !ok {
		return nil, model.ErrBindingNotFound
	}
	return binding, nil
}

func (s *Storage) FindBindingByUser(ctx context.Context, code model.RoomCode, userID model.UserID) (*model.ConnectionBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, binding := range s.bindings {
		if binding.RoomCode == code && binding.UserID == userID {
			return binding, nil
		}
	}
	return nil, model.ErrBindingNotFound
}

func (s *Storage) DeleteBinding(ctx context.Context, connID model.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, connID)
	return nil
}
