package model

import "time"

// ChatMessage is one entry in a room's append-only chat log. Log order is
// the single source of truth for chat history.
type ChatMessage struct {
	Content      string    `json:"content"`
	IsFromSystem bool      `json:"isFromSystem"`
	Type         string    `json:"type,omitempty"` // free-form tag, e.g. "GameOver"
	SentAt       time.Time `json:"sentAt"`
}

// NewSystemMessage creates a system-authored chat message
func NewSystemMessage(content, msgType string, at time.Time) ChatMessage {
	return ChatMessage{
		Content:      content,
		IsFromSystem: true,
		Type:         msgType,
		SentAt:       at,
	}
}
