package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"chessroom/internal/dependencies/clock"
	"chessroom/internal/dependencies/random"
	"chessroom/internal/model"
	"chessroom/internal/services/registry"
	"chessroom/internal/storage"
	"chessroom/internal/transport"
)

// ColorPolicy selects the color assigned to a first joiner who states no
// preference
type ColorPolicy string

const (
	ColorPolicyWhite  ColorPolicy = "white"
	ColorPolicyRandom ColorPolicy = "random"
)

// Config holds configuration for the session manager
type Config struct {
	ColorPolicy ColorPolicy
}

// DefaultConfig returns the default session manager configuration
func DefaultConfig() Config {
	return Config{
		ColorPolicy: ColorPolicyWhite,
	}
}

// Manager orchestrates room membership, move and chat relay, draw
// negotiation, resignation, and disconnect reconciliation. All operations
// on a single room are serialized behind a per-room lock, so a join racing
// a join, or a move relay racing a resignation, cannot interleave.
type Manager struct {
	storage   storage.Storage
	registry  *registry.Registry
	transport transport.Transport
	clock     clock.Clock
	random    random.Random
	config    Config
	logger    *slog.Logger

	mu    sync.Mutex
	rooms map[model.RoomCode]*roomState
}

// roomState is the transient per-room state: the serialization lock, the
// draw negotiation flag, and the count of bound connections that pin the
// entry. It is not persisted on the Room entity.
type roomState struct {
	mu          sync.Mutex
	drawPending bool
	conns       int
}

// NewManager creates a new session Manager
func NewManager(
	storage storage.Storage,
	registry *registry.Registry,
	transport transport.Transport,
	clk clock.Clock,
	rnd random.Random,
	config Config,
	logger *slog.Logger,
) *Manager {
	if config.ColorPolicy == "" {
		config.ColorPolicy = ColorPolicyWhite
	}
	return &Manager{
		storage:   storage,
		registry:  registry,
		transport: transport,
		clock:     clk,
		random:    rnd,
		config:    config,
		logger:    logger.With(slog.String("component", "session")),
		rooms:     make(map[model.RoomCode]*roomState),
	}
}

// lockRoom acquires the serialization lock for a room, creating the state
// entry on first use
func (m *Manager) lockRoom(code model.RoomCode) *roomState {
	m.mu.Lock()
	st, ok := m.rooms[code]
	if !ok {
		st = &roomState{}
		m.rooms[code] = st
	}
	m.mu.Unlock()

	st.mu.Lock()
	return st
}

// dropRoomState discards the per-room state after room deletion. A
// goroutine already blocked on the stale lock proceeds, fails its room
// lookup, and no-ops.
func (m *Manager) dropRoomState(code model.RoomCode) {
	m.mu.Lock()
	delete(m.rooms, code)
	m.mu.Unlock()
}

// releaseRoomState evicts the per-room entry once nothing pins it. Callers
// hold the room lock and invoke this only when the room is gone or
// terminal, states that never revert, so a goroutine blocked on the stale
// lock re-reads the room and no-ops. While a bound connection remains the
// entry stays; its disconnect performs the eviction.
func (m *Manager) releaseRoomState(code model.RoomCode, st *roomState) {
	if st.conns > 0 {
		return
	}
	m.mu.Lock()
	if m.rooms[code] == st {
		delete(m.rooms, code)
	}
	m.mu.Unlock()
}

// CreateRoom creates a room and acknowledges the requester with its code
func (m *Manager) CreateRoom(ctx context.Context, conn model.ConnID, duration int64) error {
	room, err := m.registry.Create(ctx, duration)
	if err != nil {
		m.transport.Emit(conn, model.EventError, errorPayload(err))
		return err
	}

	m.transport.Emit(conn, model.EventRoomCreated, model.RoomCreatedPayload{Code: room.Code})
	return nil
}

// Join admits a user into a room, assigns a color, and binds the
// connection. A join by a user ID already present is a no-op rejoin: the
// success acknowledgment is re-emitted, the connection is re-bound, and no
// UserJoined broadcast is sent.
func (m *Manager) Join(ctx context.Context, conn model.ConnID, code model.RoomCode, user model.JoinUser) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.emitJoinFailure(conn, err)
		m.releaseRoomState(code, st)
		return err
	}

	if room.Status.IsTerminal() {
		m.emitJoinFailure(conn, model.ErrRoomClosed)
		m.releaseRoomState(code, st)
		return model.ErrRoomClosed
	}

	if room.GetMember(user.ID) != nil {
		// Rejoin by identity: re-bind the connection so the returning
		// user receives broadcasts again, but never duplicate the member.
		// The superseded connection is unbound first, so its eventual
		// close cannot forfeit a user who is still present.
		prev, findErr := m.storage.FindBindingByUser(ctx, code, user.ID)
		sameConn := findErr == nil && prev.ConnID == conn
		if findErr == nil && !sameConn {
			if err := m.storage.DeleteBinding(ctx, prev.ConnID); err != nil {
				m.emitJoinFailure(conn, err)
				return err
			}
			m.transport.Unsubscribe(prev.ConnID, code)
			if st.conns > 0 {
				st.conns--
			}
		}
		if err := m.bind(ctx, conn, user.ID, code); err != nil {
			m.emitJoinFailure(conn, err)
			return err
		}
		if !sameConn {
			st.conns++
		}
		m.transport.Emit(conn, model.EventJoinResult, model.JoinResultPayload{Success: true, Code: code})
		return nil
	}

	if room.IsFull() {
		m.emitJoinFailure(conn, model.ErrRoomFull)
		return model.ErrRoomFull
	}

	// Private snapshot of the caller-supplied profile; the room never
	// aliases caller-owned data
	player := model.Player{
		ID:     user.ID,
		Name:   user.Name,
		Avatar: user.Avatar,
		Color:  m.assignColor(room, user),
	}

	room.Members = append(room.Members, player)
	if len(room.Members) == model.MaxMembers {
		room.Status = model.RoomStatusReady
	}

	if err := m.storage.SaveRoom(ctx, room); err != nil {
		m.emitJoinFailure(conn, err)
		return err
	}

	if err := m.bind(ctx, conn, user.ID, code); err != nil {
		m.emitJoinFailure(conn, err)
		return err
	}
	st.conns++

	m.logger.Info("user joined",
		slog.String("room", string(code)),
		slog.String("user", string(user.ID)),
		slog.String("color", string(player.Color)))

	m.transport.Broadcast(code, conn, model.EventUserJoined, model.UserJoinedPayload{
		Status:  room.Status,
		Members: room.Members,
	})
	m.transport.Emit(conn, model.EventJoinResult, model.JoinResultPayload{Success: true, Code: code})
	return nil
}

// assignColor picks the color for a new member. The first joiner gets their
// stated preference, falling back to the configured policy; the second
// joiner always gets the complement of whatever the first holds.
func (m *Manager) assignColor(room *model.Room, user model.JoinUser) model.Color {
	if len(room.Members) > 0 {
		return room.Members[0].Color.Opposite()
	}
	if user.Color.Valid() {
		return user.Color
	}
	if m.config.ColorPolicy == ColorPolicyRandom && m.random.Intn(2) == 1 {
		return model.ColorBlack
	}
	return model.ColorWhite
}

func (m *Manager) bind(ctx context.Context, conn model.ConnID, userID model.UserID, code model.RoomCode) error {
	err := m.storage.SaveBinding(ctx, &model.ConnectionBinding{
		ConnID:   conn,
		UserID:   userID,
		RoomCode: code,
	})
	if err != nil {
		return fmt.Errorf("bind connection: %w", err)
	}
	m.transport.Subscribe(conn, code)
	return nil
}

func (m *Manager) emitJoinFailure(conn model.ConnID, err error) {
	m.transport.Emit(conn, model.EventJoinResult, model.JoinResultPayload{
		Success: false,
		Error:   err.Error(),
	})
}

// RoomInfo replies to the requester with a consistent snapshot of the room
func (m *Manager) RoomInfo(ctx context.Context, conn model.ConnID, code model.RoomCode) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.transport.Emit(conn, model.EventRoomInfo, model.RoomInfoPayload{
			Success: false,
			Error:   err.Error(),
		})
		m.releaseRoomState(code, st)
		return err
	}

	m.transport.Emit(conn, model.EventRoomInfo, model.RoomInfoPayload{Success: true, Room: room})
	return nil
}

// RelayMove broadcasts a move verbatim to the other connection(s). No
// legality checking is performed. A vanished room is a no-op: the relay
// simply has no recipients.
func (m *Manager) RelayMove(ctx context.Context, conn model.ConnID, code model.RoomCode, move json.RawMessage) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.releaseRoomState(code, st)
		return nil
	}

	if room.Status.IsTerminal() {
		m.transport.Emit(conn, model.EventError, errorPayload(model.ErrRoomClosed))
		m.releaseRoomState(code, st)
		return model.ErrRoomClosed
	}

	m.transport.Broadcast(code, conn, model.EventMoveMade, model.MoveMadePayload{Move: move})
	return nil
}

// RelayChat appends a message to the room's chat log and broadcasts it to
// the other connection(s). Append and broadcast happen under the room lock
// as one logical step, so readers of the log always see exactly the
// broadcast messages in broadcast order.
func (m *Manager) RelayChat(ctx context.Context, conn model.ConnID, code model.RoomCode, msg model.ChatMessage) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.releaseRoomState(code, st)
		return nil
	}

	if room.Status.IsTerminal() {
		m.transport.Emit(conn, model.EventError, errorPayload(model.ErrRoomClosed))
		m.releaseRoomState(code, st)
		return model.ErrRoomClosed
	}

	msg.IsFromSystem = false
	msg.SentAt = m.clock.Now()

	if err := m.storage.AppendChatMessage(ctx, code, msg); err != nil {
		m.transport.Emit(conn, model.EventError, errorPayload(err))
		return err
	}

	m.transport.Broadcast(code, conn, model.EventChatMessage, msg)
	return nil
}

// RequestDraw broadcasts a draw prompt to the other party. Room state is
// unchanged; only the transient negotiation flag is set.
func (m *Manager) RequestDraw(ctx context.Context, conn model.ConnID, code model.RoomCode) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.releaseRoomState(code, st)
		return nil
	}

	if room.Status.IsTerminal() {
		m.transport.Emit(conn, model.EventError, errorPayload(model.ErrRoomClosed))
		m.releaseRoomState(code, st)
		return model.ErrRoomClosed
	}

	st.drawPending = true
	m.transport.Broadcast(code, conn, model.EventDrawOffered, struct{}{})
	return nil
}

// ResolveDraw answers a pending draw offer. Rejection resets the
// negotiation so a new offer may follow; acceptance puts the room in the
// terminal Draw status and notifies every connection, including the
// resolver, since the result is a shared observable fact.
func (m *Manager) ResolveDraw(ctx context.Context, conn model.ConnID, code model.RoomCode, accept bool) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.releaseRoomState(code, st)
		return nil
	}

	if room.Status.IsTerminal() {
		m.transport.Emit(conn, model.EventError, errorPayload(model.ErrRoomClosed))
		m.releaseRoomState(code, st)
		return model.ErrRoomClosed
	}

	if !st.drawPending {
		return nil
	}
	st.drawPending = false

	if !accept {
		m.transport.Broadcast(code, conn, model.EventDrawRejected, struct{}{})
		return nil
	}

	room.Status = model.RoomStatusDraw
	if err := m.storage.SaveRoom(ctx, room); err != nil {
		m.transport.Emit(conn, model.EventError, errorPayload(err))
		return err
	}

	m.logger.Info("draw accepted", slog.String("room", string(code)))
	m.transport.Broadcast(code, "", model.EventDrawAccepted, model.RoomPayload{Room: room})
	return nil
}

// Resign marks the resigning member as the loser, closes the room, and
// broadcasts the updated room to the other connection(s)
func (m *Manager) Resign(ctx context.Context, conn model.ConnID, code model.RoomCode, userID model.UserID) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.releaseRoomState(code, st)
		return nil
	}

	if room.Status.IsTerminal() {
		m.transport.Emit(conn, model.EventError, errorPayload(model.ErrRoomClosed))
		m.releaseRoomState(code, st)
		return model.ErrRoomClosed
	}

	member := room.GetMember(userID)
	if member == nil {
		m.transport.Emit(conn, model.EventError, errorPayload(model.ErrNotInRoom))
		return model.ErrNotInRoom
	}

	member.IsLoser = true
	room.Status = model.RoomStatusGameOver

	if err := m.storage.SaveRoom(ctx, room); err != nil {
		m.transport.Emit(conn, model.EventError, errorPayload(err))
		return err
	}

	m.logger.Info("user resigned",
		slog.String("room", string(code)),
		slog.String("user", string(userID)))
	m.transport.Broadcast(code, conn, model.EventRoomUpdated, model.RoomPayload{Room: room})
	return nil
}

// HandleDisconnect reconciles room state after a connection is lost. The
// binding removal makes a duplicate notification for the same connection a
// no-op.
func (m *Manager) HandleDisconnect(ctx context.Context, conn model.ConnID) error {
	binding, err := m.storage.GetBinding(ctx, conn)
	if err != nil {
		// The connection never completed a join, or this is a duplicate
		// disconnect notification
		return nil
	}

	code := binding.RoomCode
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	if err := m.storage.DeleteBinding(ctx, conn); err != nil {
		return err
	}
	m.transport.Unsubscribe(conn, code)
	if st.conns > 0 {
		st.conns--
	}

	room, err := m.storage.GetRoom(ctx, code)
	if err != nil {
		m.releaseRoomState(code, st)
		return nil
	}

	// Sole member leaving: nobody remains to forfeit to, so the room and
	// its chat log go away entirely
	if len(room.Members) == 1 && room.Members[0].ID == binding.UserID {
		if err := m.registry.Delete(ctx, code); err != nil {
			return err
		}
		m.transport.CloseRoom(code)
		m.dropRoomState(code)
		return nil
	}

	// A disconnect after the game already ended changes nothing; terminal
	// status never reverts or re-triggers a forfeit. Once the last bound
	// connection is gone the room's hub and transient state go with it.
	if room.Status.IsTerminal() {
		if st.conns == 0 {
			m.transport.CloseRoom(code)
		}
		m.releaseRoomState(code, st)
		return nil
	}

	member := room.GetMember(binding.UserID)
	if member == nil {
		return nil
	}
	member.IsLoser = true
	room.Status = model.RoomStatusGameOver

	if err := m.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	sysMsg := model.NewSystemMessage(
		fmt.Sprintf("%s disconnected. %s wins by forfeit.", member.Name, m.remainingNames(room, binding.UserID)),
		"GameOver",
		m.clock.Now(),
	)
	if err := m.storage.AppendChatMessage(ctx, code, sysMsg); err != nil {
		return err
	}

	m.logger.Info("user disconnected, forfeiting",
		slog.String("room", string(code)),
		slog.String("user", string(binding.UserID)))

	m.transport.Broadcast(code, conn, model.EventChatMessage, sysMsg)
	m.transport.Broadcast(code, conn, model.EventOpponentLeave, model.RoomPayload{Room: room})

	if st.conns == 0 {
		m.transport.CloseRoom(code)
		m.releaseRoomState(code, st)
	}
	return nil
}

// RemoveRoom deletes a room outright and tears down its broadcast group
// and transient state. The hook for an external sweeper that times out
// idle rooms; live members learn the room is gone on their next operation.
func (m *Manager) RemoveRoom(ctx context.Context, code model.RoomCode) error {
	st := m.lockRoom(code)
	defer st.mu.Unlock()

	if err := m.registry.Delete(ctx, code); err != nil {
		return err
	}
	m.transport.CloseRoom(code)
	m.dropRoomState(code)
	return nil
}

// remainingNames names the member(s) other than the given user
func (m *Manager) remainingNames(room *model.Room, except model.UserID) string {
	for _, p := range room.Members {
		if p.ID != except {
			return p.Name
		}
	}
	return "Opponent"
}
