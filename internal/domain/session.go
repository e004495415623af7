package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// ChatMessage is one half of a turn. Rows are immutable once written;
// within a session they are ordered by created_at with seq as the
// insertion-order tie-break.
type ChatMessage struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Seq       int
	Role      string
	Content   string
	CreatedAt time.Time
}

// SessionHistory is one session with its full message log, oldest first.
type SessionHistory struct {
	Session  ChatSession
	Messages []ChatMessage
}

// Usage is the provider's token accounting for a single exchange.
// Passed through to the caller, never persisted.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
