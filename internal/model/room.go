package model

import "time"

// RoomCode uniquely identifies a room. Codes are uuid v4 strings, so
// collisions are cryptographically negligible without an existence check.
type RoomCode string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "Waiting"  // Fewer than two members
	RoomStatusReady    RoomStatus = "Ready"    // Both members present, game on
	RoomStatusGameOver RoomStatus = "GameOver" // Terminal: resignation or forfeit
	RoomStatusDraw     RoomStatus = "Draw"     // Terminal: draw accepted
)

// IsTerminal reports whether the status admits no further gameplay mutation
func (s RoomStatus) IsTerminal() bool {
	return s == RoomStatusGameOver || s == RoomStatusDraw
}

// MaxMembers is the room capacity; the game is strictly two-player
const MaxMembers = 2

// Room pairs up to two participants for one game instance
type Room struct {
	Code RoomCode `json:"code"`
	// Status advances Waiting -> Ready on the second distinct join and ends
	// in GameOver or Draw; terminal statuses never revert.
	Status RoomStatus `json:"status"`
	// Duration is the game clock budget in milliseconds, copied from the
	// creation request. Advisory only: enforcement belongs to the clients
	// or an external sweeper.
	Duration  int64     `json:"duration"`
	Members   []Player  `json:"members"` // insertion order = join order
	CreatedAt time.Time `json:"createdAt"`
}

// GetMember returns the member with the given user ID, or nil if not found
func (r *Room) GetMember(id UserID) *Player {
	for i := range r.Members {
		if r.Members[i].ID == id {
			return &r.Members[i]
		}
	}
	return nil
}

// IsFull reports whether the room has reached capacity
func (r *Room) IsFull() bool {
	return len(r.Members) >= MaxMembers
}
