package model

import "encoding/json"

// EventType identifies an event on the wire
type EventType string

const (
	// Inbound events
	EventCreateRoom  EventType = "CreateRoom"
	EventJoinRoom    EventType = "JoinRoom"
	EventGetRoomInfo EventType = "GetRoomInfo"
	EventMakeMove    EventType = "MakeMove"
	EventSendChat    EventType = "SendChat"
	EventRequestDraw EventType = "RequestDraw"
	EventResolveDraw EventType = "ResolveDraw"
	EventResign      EventType = "Resign"

	// Outbound events
	EventRoomCreated   EventType = "RoomCreated"
	EventJoinResult    EventType = "JoinResult"
	EventRoomInfo      EventType = "RoomInfo"
	EventUserJoined    EventType = "UserJoined"
	EventMoveMade      EventType = "MoveMade"
	EventChatMessage   EventType = "ChatMessage"
	EventDrawOffered   EventType = "DrawOffered"
	EventDrawRejected  EventType = "DrawRejected"
	EventDrawAccepted  EventType = "DrawAccepted"
	EventRoomUpdated   EventType = "RoomUpdated"
	EventOpponentLeave EventType = "OpponentLeave"
	EventError         EventType = "Error"
)

// JoinUser is the caller-supplied profile in a join request. Color is an
// optional preference honored only for the first joiner.
type JoinUser struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Color  Color  `json:"color,omitempty"`
}

// CreateRoomRequest contains data for CreateRoom events
type CreateRoomRequest struct {
	Duration int64 `json:"duration"`
}

// RoomCreatedPayload contains data for RoomCreated events
type RoomCreatedPayload struct {
	Code RoomCode `json:"code"`
}

// JoinRoomRequest contains data for JoinRoom events
type JoinRoomRequest struct {
	Code RoomCode `json:"code"`
	User JoinUser `json:"user"`
}

// JoinResultPayload is the acknowledgment sent to the joining connection
type JoinResultPayload struct {
	Success bool     `json:"success"`
	Code    RoomCode `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// UserJoinedPayload is broadcast to the other room members on a join
type UserJoinedPayload struct {
	Status  RoomStatus `json:"status"`
	Members []Player   `json:"members"`
}

// GetRoomInfoRequest contains data for GetRoomInfo events
type GetRoomInfoRequest struct {
	Code RoomCode `json:"code"`
}

// RoomInfoPayload contains data for RoomInfo events
type RoomInfoPayload struct {
	Success bool   `json:"success"`
	Room    *Room  `json:"room,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MakeMoveRequest contains data for MakeMove events. The move is opaque:
// it is relayed verbatim with no legality checking.
type MakeMoveRequest struct {
	Code RoomCode        `json:"code"`
	Move json.RawMessage `json:"move"`
}

// MoveMadePayload contains data for MoveMade events
type MoveMadePayload struct {
	Move json.RawMessage `json:"move"`
}

// SendChatRequest contains data for SendChat events
type SendChatRequest struct {
	Code    RoomCode    `json:"code"`
	Message ChatMessage `json:"message"`
}

// RequestDrawRequest contains data for RequestDraw events
type RequestDrawRequest struct {
	Code RoomCode `json:"code"`
}

// ResolveDrawRequest contains data for ResolveDraw events
type ResolveDrawRequest struct {
	Code   RoomCode `json:"code"`
	Accept bool     `json:"accept"`
}

// ResignRequest contains data for Resign events
type ResignRequest struct {
	Code   RoomCode `json:"code"`
	UserID UserID   `json:"userId"`
}

// RoomPayload carries an updated room snapshot (DrawAccepted, RoomUpdated,
// OpponentLeave)
type RoomPayload struct {
	Room *Room `json:"room"`
}

// ErrorPayload is the structured failure response for a rejected operation
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
