package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"chessroom/internal/model"
	"chessroom/internal/services/session"
)

// dispatchFunc handles one inbound event for a connection
type dispatchFunc func(ctx context.Context, conn model.ConnID, data json.RawMessage) error

// Handler upgrades HTTP requests to websocket connections and dispatches
// inbound events to the session manager by event name
type Handler struct {
	manager   *session.Manager
	transport *Transport
	upgrader  websocket.Upgrader
	logger    *slog.Logger
	dispatch  map[model.EventType]dispatchFunc
}

// NewHandler creates a websocket Handler wired to the session manager
func NewHandler(manager *session.Manager, t *Transport, logger *slog.Logger) *Handler {
	h := &Handler{
		manager:   manager,
		transport: t,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Game clients connect cross-origin; room access is governed
			// by knowledge of the room code
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}

	h.dispatch = map[model.EventType]dispatchFunc{
		model.EventCreateRoom: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.CreateRoomRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.CreateRoom(ctx, conn, req.Duration)
		},
		model.EventJoinRoom: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.JoinRoomRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.Join(ctx, conn, req.Code, req.User)
		},
		model.EventGetRoomInfo: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.GetRoomInfoRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.RoomInfo(ctx, conn, req.Code)
		},
		model.EventMakeMove: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.MakeMoveRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.RelayMove(ctx, conn, req.Code, req.Move)
		},
		model.EventSendChat: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.SendChatRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.RelayChat(ctx, conn, req.Code, req.Message)
		},
		model.EventRequestDraw: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.RequestDrawRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.RequestDraw(ctx, conn, req.Code)
		},
		model.EventResolveDraw: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.ResolveDrawRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.ResolveDraw(ctx, conn, req.Code, req.Accept)
		},
		model.EventResign: func(ctx context.Context, conn model.ConnID, data json.RawMessage) error {
			var req model.ResignRequest
			if !h.decode(conn, data, &req) {
				return nil
			}
			return h.manager.Resign(ctx, conn, req.Code, req.UserID)
		},
	}

	return h
}

// ServeHTTP upgrades the request and serves the connection until it drops
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(conn, h.logger)
	h.transport.addConn(client)
	h.logger.Info("connection opened", slog.String("conn_id", string(client.id)))

	go client.writePump()

	client.readPump(func(data []byte) {
		h.handleMessage(r.Context(), client, data)
	})

	// Reconciliation runs on a fresh context: the request context is
	// already canceled once the connection drops
	if err := h.manager.HandleDisconnect(context.Background(), client.id); err != nil {
		h.logger.Error("disconnect reconciliation failed",
			slog.String("conn_id", string(client.id)),
			slog.String("error", err.Error()))
	}

	h.transport.removeConn(client)
	client.close()
	h.logger.Info("connection closed", slog.String("conn_id", string(client.id)))
}

// handleMessage decodes one inbound frame and routes it by event name
func (h *Handler) handleMessage(ctx context.Context, client *Client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.transport.Emit(client.id, model.EventError, model.ErrorPayload{
			Code:    "INVALID_REQUEST",
			Message: "malformed event envelope",
		})
		return
	}

	fn, ok := h.dispatch[env.Event]
	if !ok {
		h.transport.Emit(client.id, model.EventError, model.ErrorPayload{
			Code:    "UNKNOWN_EVENT",
			Message: "unknown event: " + string(env.Event),
		})
		return
	}

	if err := fn(ctx, client.id, env.Data); err != nil {
		// Failure responses have already been emitted to the requester;
		// this is for operator visibility only
		h.logger.Debug("event handling failed",
			slog.String("event", string(env.Event)),
			slog.String("conn_id", string(client.id)),
			slog.String("error", err.Error()))
	}
}

// decode unmarshals an event payload, reporting malformed input to the
// requester
func (h *Handler) decode(conn model.ConnID, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		h.transport.Emit(conn, model.EventError, model.ErrorPayload{
			Code:    "INVALID_REQUEST",
			Message: "malformed event payload",
		})
		return false
	}
	return true
}
