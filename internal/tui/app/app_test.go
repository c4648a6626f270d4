package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/workscope-dev/workscope/internal/api"
	"github.com/workscope-dev/workscope/internal/conversation"
	"github.com/workscope-dev/workscope/internal/session"
	"github.com/workscope-dev/workscope/internal/tui"
	"github.com/workscope-dev/workscope/internal/tui/views"
)

// newTestApp wires an App over a temp store. The client points at a
// closed port; tests drive Update directly and never run the returned
// commands, so nothing dials it.
func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	client := api.NewClient("http://127.0.0.1:1", time.Second)
	return New(conversation.NewController(store, client, nil))
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestDeleteActiveSessionNavigatesHome(t *testing.T) {
	a := newTestApp(t)
	sess, err := a.ctrl.NewDirectSession()
	if err != nil {
		t.Fatalf("NewDirectSession failed: %v", err)
	}

	a.Update(tui.OpenSessionMsg{SessionID: sess.ID})
	if a.state != stateChat {
		t.Fatalf("state after open: got %d, want stateChat", a.state)
	}

	a.Update(tui.SessionDeletedMsg{SessionID: sess.ID})
	if a.state != stateHome {
		t.Errorf("state after deleting the open session: got %d, want stateHome", a.state)
	}
}

func TestDeleteOtherSessionKeepsChatOpen(t *testing.T) {
	a := newTestApp(t)
	open, _ := a.ctrl.NewDirectSession()
	other, _ := a.ctrl.NewDirectSession()

	a.Update(tui.OpenSessionMsg{SessionID: open.ID})
	a.Update(tui.SessionDeletedMsg{SessionID: other.ID})

	if a.state != stateChat {
		t.Errorf("deleting another session should not leave the chat view")
	}
}

func TestDeleteErrorKeepsChatOpen(t *testing.T) {
	a := newTestApp(t)
	sess, _ := a.ctrl.NewDirectSession()

	a.Update(tui.OpenSessionMsg{SessionID: sess.ID})
	a.Update(tui.SessionDeletedMsg{SessionID: sess.ID, Err: errors.New("boom")})

	if a.state != stateChat {
		t.Errorf("a failed delete should not navigate away")
	}
	if a.status == "" {
		t.Error("a failed delete should surface in the status line")
	}
}

// While a controller call is in flight no further input may reach the
// home view, so a second call can never overlap the first.
func TestHomeInputDroppedWhileCallInFlight(t *testing.T) {
	a := newTestApp(t)

	_, cmd := a.Update(views.RequestUploadMsg{Path: "plan.pdf"})
	if cmd == nil {
		t.Fatal("upload request should produce a command")
	}

	before := len(a.ctrl.Store().List(""))
	_, cmd = a.Update(keyMsg('n'))
	if cmd != nil {
		t.Error("key input should be dropped while the upload is in flight")
	}
	if got := len(a.ctrl.Store().List("")); got != before {
		t.Errorf("sessions changed while busy: got %d, want %d", got, before)
	}

	// The result message re-enables input, even on failure.
	a.Update(tui.UploadDoneMsg{Err: errors.New("boom")})
	_, cmd = a.Update(keyMsg('n'))
	if cmd == nil {
		t.Error("key input should work again after the call finishes")
	}
}
