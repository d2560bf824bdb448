package model

// UserID is the caller-supplied stable user identifier. A returning
// participant is re-identified by this value alone.
type UserID string

// Color is one of the two mutually exclusive game-side designations
type Color string

const (
	ColorWhite Color = "w"
	ColorBlack Color = "b"
)

// Valid reports whether c is one of the two known colors
func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

// Opposite returns the complementary color
func (c Color) Opposite() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Player is a participant's room-local profile snapshot. It is copied by
// value at join time and never aliases caller-owned data.
type Player struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	// Color is assigned at join time and never reassigned once bound
	Color   Color `json:"color"`
	IsLoser bool  `json:"isLoser"`
}
