// Package session provides JSON-file persistence for conversation sessions.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Kind determines which backend endpoint variant handles a session's
// first turn. It is immutable after creation.
type Kind string

const (
	// KindDocument is a session seeded from an uploaded document.
	KindDocument Kind = "document"
	// KindDirect is a session started by typing directly.
	KindDirect Kind = "direct"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one turn in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a Message with a fresh id and the current time.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Session represents one conversation thread.
// Messages are append-only; individual messages are never edited or removed.
type Session struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Kind           Kind      `json:"kind"`
	SourceFileName string    `json:"source_file_name,omitempty"`
	RemoteID       string    `json:"remote_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Messages       []Message `json:"messages"`
}
