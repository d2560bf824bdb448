package transport

import "chessroom/internal/model"

// Transport is the delivery contract the session core consumes, abstracted
// over the wire protocol. Implementations must provide reliable, ordered
// per-connection delivery; enqueueing a send never blocks the caller, and a
// send to a no-longer-connected recipient is a no-op.
type Transport interface {
	// Subscribe joins a connection to a room's broadcast group
	Subscribe(conn model.ConnID, code model.RoomCode)

	// Unsubscribe removes a connection from a room's broadcast group
	Unsubscribe(conn model.ConnID, code model.RoomCode)

	// Emit delivers an event to exactly one connection
	Emit(conn model.ConnID, event model.EventType, payload any)

	// Broadcast delivers an event to every connection subscribed to the
	// room except the given one. An empty except delivers to all.
	Broadcast(code model.RoomCode, except model.ConnID, event model.EventType, payload any)

	// CloseRoom tears down the room's broadcast group
	CloseRoom(code model.RoomCode)
}
