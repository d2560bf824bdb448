package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"chessroom/internal/model"
	"chessroom/internal/transport"
)

// Envelope is the wire framing for every event in either direction
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Transport routes events to websocket connections. It implements the
// transport contract the session core consumes: per-connection emits and
// per-room broadcasts over the hub fan-out.
type Transport struct {
	hubs   *HubManager
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[model.ConnID]*Client
}

// Ensure Transport implements the contract
var _ transport.Transport = (*Transport)(nil)

// NewTransport creates a websocket Transport
func NewTransport(logger *slog.Logger) *Transport {
	return &Transport{
		hubs:   NewHubManager(logger),
		logger: logger.With(slog.String("component", "ws")),
		conns:  make(map[model.ConnID]*Client),
	}
}

// addConn tracks a newly accepted connection
func (t *Transport) addConn(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[c.id] = c
}

// removeConn forgets a connection after it is gone
func (t *Transport) removeConn(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, c.id)
}

func (t *Transport) getConn(conn model.ConnID) *Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conns[conn]
}

// Subscribe joins a connection to a room's broadcast group
func (t *Transport) Subscribe(conn model.ConnID, code model.RoomCode) {
	c := t.getConn(conn)
	if c == nil {
		return
	}
	t.hubs.GetOrCreateHub(code).Register(c)
}

// Unsubscribe removes a connection from a room's broadcast group
func (t *Transport) Unsubscribe(conn model.ConnID, code model.RoomCode) {
	c := t.getConn(conn)
	if c == nil {
		return
	}
	if hub := t.hubs.GetHub(code); hub != nil {
		hub.Unregister(c)
	}
}

// Emit delivers an event to exactly one connection. A send to an absent or
// saturated connection is a no-op.
func (t *Transport) Emit(conn model.ConnID, event model.EventType, payload any) {
	c := t.getConn(conn)
	if c == nil {
		return
	}
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		t.logger.Error("event encoding failed",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	if !c.enqueue(data) {
		t.logger.Warn("emit dropped - client buffer full",
			slog.String("conn_id", string(conn)),
			slog.String("event", string(event)))
	}
}

// Broadcast delivers an event to every connection subscribed to the room
// except the given one. A room with no hub has no recipients.
func (t *Transport) Broadcast(code model.RoomCode, except model.ConnID, event model.EventType, payload any) {
	hub := t.hubs.GetHub(code)
	if hub == nil {
		return
	}
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		t.logger.Error("event encoding failed",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	hub.Broadcast(except, data)
}

// CloseRoom tears down the room's broadcast group
func (t *Transport) CloseRoom(code model.RoomCode) {
	t.hubs.RemoveHub(code)
}

// marshalEnvelope encodes an event and payload into a wire frame
func marshalEnvelope(event model.EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
