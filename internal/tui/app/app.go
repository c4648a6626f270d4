// Package app wires the TUI views into a single Bubble Tea program.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/workscope-dev/workscope/internal/conversation"
	"github.com/workscope-dev/workscope/internal/session"
	"github.com/workscope-dev/workscope/internal/tui"
	"github.com/workscope-dev/workscope/internal/tui/commands"
	"github.com/workscope-dev/workscope/internal/tui/views"
)

// state identifies the active view.
type state int

const (
	stateHome state = iota
	stateChat
)

// App is the root model. It routes messages between the home and chat
// views and turns view requests into controller commands.
type App struct {
	ctrl   *conversation.Controller
	state  state
	home   views.HomeModel
	chat   views.ChatModel
	status string
	// busy is set while a home-triggered controller call is in flight;
	// input is dropped until the result message arrives, so at most one
	// call touches the store at a time.
	busy   bool
	width  int
	height int
}

// New creates the root model over the given controller.
func New(ctrl *conversation.Controller) *App {
	width, height := 100, 30
	return &App{
		ctrl:   ctrl,
		state:  stateHome,
		home:   views.NewHomeModel(ctrl.Store().List(""), width, height),
		width:  width,
		height: height,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.home.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			return a, tea.Quit
		}
		if a.busy {
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.home, cmd = a.home.Update(msg)
		cmds = append(cmds, cmd)
		if a.state == stateChat {
			a.chat, cmd = a.chat.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	// Navigation requests from the views.

	case tui.OpenSessionMsg:
		if sess := a.ctrl.Store().Get(msg.SessionID); sess != nil {
			return a, a.openChat(sess)
		}
		return a, nil

	case views.ExitChatMsg:
		a.goHome()
		return a, nil

	case views.RequestNewChatMsg:
		a.status = ""
		a.busy = true
		return a, commands.NewDirectSessionCmd(a.ctrl)

	case views.RequestUploadMsg:
		a.status = "Uploading..."
		a.busy = true
		return a, commands.UploadDocumentCmd(a.ctrl, msg.Path)

	case views.RequestDeleteMsg:
		a.busy = true
		return a, commands.DeleteSessionCmd(a.ctrl, msg.SessionID)

	case views.SendChatMsg:
		a.chat.SetLoading(true)
		return a, tea.Batch(
			a.chat.Init(),
			commands.SendTurnCmd(a.ctrl, msg.SessionID, msg.Content),
		)

	case views.CopyRequestMsg:
		return a, commands.CopyCmd(msg.Text)

	// Controller results.

	case tui.SessionCreatedMsg:
		a.busy = false
		if msg.Err != nil {
			a.status = "Could not create session: " + msg.Err.Error()
			return a, nil
		}
		return a, a.openChat(msg.Session)

	case tui.UploadDoneMsg:
		a.busy = false
		a.status = ""
		if msg.Err != nil {
			a.status = "Upload failed: " + msg.Err.Error()
			a.home.SetSessions(a.ctrl.Store().List(""))
			return a, nil
		}
		return a, a.openChat(msg.Session)

	case tui.TurnDoneMsg:
		a.chat.SetLoading(false)
		// The session carries the transcript even on failure; the error
		// shows up as both a synthetic reply and a status line.
		if msg.Session != nil {
			a.chat.SetSession(msg.Session)
		}
		if msg.Err != nil {
			a.chat.SetStatus("Send failed: " + msg.Err.Error())
		} else {
			a.chat.SetStatus("")
		}
		return a, nil

	case tui.SessionDeletedMsg:
		a.busy = false
		if msg.Err != nil {
			a.status = "Delete failed: " + msg.Err.Error()
			return a, nil
		}
		a.home.SetSessions(a.ctrl.Store().List(""))
		if a.state == stateChat && a.chat.Session() != nil && a.chat.Session().ID == msg.SessionID {
			a.goHome()
		}
		return a, nil

	case tui.CopiedMsg:
		if msg.Err != nil {
			a.chat.SetStatus("Copy failed: " + msg.Err.Error())
		} else {
			a.chat.SetStatus("Copied to clipboard")
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.state {
	case stateHome:
		a.home, cmd = a.home.Update(msg)
	case stateChat:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	switch a.state {
	case stateChat:
		return a.chat.View()
	default:
		view := a.home.View()
		if a.status != "" {
			view += "\n" + tui.WarningStyle.Render(a.status)
		}
		return view
	}
}

func (a *App) openChat(sess *session.Session) tea.Cmd {
	a.status = ""
	a.chat = views.NewChatModel(sess, a.width, a.height)
	a.state = stateChat
	return a.chat.Init()
}

func (a *App) goHome() {
	a.home.SetSessions(a.ctrl.Store().List(""))
	a.state = stateHome
}
