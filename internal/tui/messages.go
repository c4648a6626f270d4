package tui

import "github.com/workscope-dev/workscope/internal/session"

// ============================================================================
// Navigation Messages
// ============================================================================

// OpenSessionMsg asks the app to open a session in the chat view.
type OpenSessionMsg struct {
	SessionID string
}

// ============================================================================
// Controller Result Messages
// ============================================================================

// SessionCreatedMsg signals that a new direct session exists.
type SessionCreatedMsg struct {
	Session *session.Session
	Err     error
}

// UploadDoneMsg signals that a document upload finished.
type UploadDoneMsg struct {
	Session *session.Session
	Err     error
}

// TurnDoneMsg signals that a chat turn finished. Session carries the
// updated transcript even when Err is set: a failed turn still appends
// the synthetic assistant message.
type TurnDoneMsg struct {
	Session *session.Session
	Err     error
}

// SessionDeletedMsg signals that a session was removed.
type SessionDeletedMsg struct {
	SessionID string
	Err       error
}

// CopiedMsg signals that a clipboard write finished.
type CopiedMsg struct {
	Err error
}
