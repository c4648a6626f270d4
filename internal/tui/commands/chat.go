// Package commands provides Bubble Tea commands for TUI operations.
// Each command wraps one controller call so the blocking HTTP request
// runs off the update loop.
package commands

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/workscope-dev/workscope/internal/conversation"
	"github.com/workscope-dev/workscope/internal/tui"
)

// NewDirectSessionCmd creates an empty direct chat session.
func NewDirectSessionCmd(ctrl *conversation.Controller) tea.Cmd {
	return func() tea.Msg {
		sess, err := ctrl.NewDirectSession()
		return tui.SessionCreatedMsg{Session: sess, Err: err}
	}
}

// UploadDocumentCmd creates a document session for the file at path and
// submits it to the backend.
func UploadDocumentCmd(ctrl *conversation.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		sess, err := ctrl.UploadDocument(context.Background(), path)
		return tui.UploadDoneMsg{Session: sess, Err: err}
	}
}

// SendTurnCmd submits one chat turn for the session.
func SendTurnCmd(ctrl *conversation.Controller, sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		sess, err := ctrl.SendTurn(context.Background(), sessionID, text)
		return tui.TurnDoneMsg{Session: sess, Err: err}
	}
}

// DeleteSessionCmd removes a session from the store.
func DeleteSessionCmd(ctrl *conversation.Controller, sessionID string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.DeleteSession(sessionID)
		return tui.SessionDeletedMsg{SessionID: sessionID, Err: err}
	}
}

// CopyCmd writes text to the system clipboard. Fire-and-forget; the
// resulting message only feeds the status line.
func CopyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return tui.CopiedMsg{Err: clipboard.WriteAll(text)}
	}
}
