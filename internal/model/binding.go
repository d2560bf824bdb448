package model

// ConnID identifies one live transport connection
type ConnID string

// ConnectionBinding associates a connection with the (user, room) it is
// participating in. Created on successful join, removed on disconnect;
// at most one binding exists per connection.
type ConnectionBinding struct {
	ConnID   ConnID
	UserID   UserID
	RoomCode RoomCode
}
