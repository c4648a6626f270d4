// Package views provides TUI view components for the workscope client.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/workscope-dev/workscope/internal/session"
	"github.com/workscope-dev/workscope/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// RequestNewChatMsg is sent when the user starts a direct chat.
type RequestNewChatMsg struct{}

// RequestUploadMsg is sent when the user submits a document path.
type RequestUploadMsg struct {
	Path string
}

// RequestDeleteMsg is sent when the user deletes the selected session.
type RequestDeleteMsg struct {
	SessionID string
}

// ============================================================================
// HomeModel
// ============================================================================

// sessionItem adapts a session for the bubbles list.
type sessionItem struct {
	sess *session.Session
}

func (i sessionItem) Title() string {
	name := i.sess.Name
	if name == "" {
		name = i.sess.ID
	}
	return name
}

func (i sessionItem) Description() string {
	kind := "direct chat"
	if i.sess.Kind == session.KindDocument {
		kind = i.sess.SourceFileName
	}
	return fmt.Sprintf("%d messages · %s", len(i.sess.Messages), kind)
}

func (i sessionItem) FilterValue() string {
	return i.Title()
}

// HomeModel is the view model for the session picker screen.
type HomeModel struct {
	sessions  list.Model
	pathInput textinput.Model
	prompting bool
	keys      tui.KeyMap
	width     int
	height    int
}

// NewHomeModel creates a HomeModel listing the given sessions.
func NewHomeModel(sessions []*session.Session, width, height int) HomeModel {
	l := list.New(sessionItems(sessions), list.NewDefaultDelegate(), width-8, height-12)
	l.Title = "Sessions"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	ti := textinput.New()
	ti.Placeholder = "Path to document (.pdf, .doc, .docx, .txt)"
	ti.CharLimit = 500
	ti.Width = width - 12

	return HomeModel{
		sessions:  l,
		pathInput: ti,
		keys:      tui.DefaultKeyMap,
		width:     width,
		height:    height,
	}
}

// SetSessions replaces the listed sessions.
func (m *HomeModel) SetSessions(sessions []*session.Session) {
	m.sessions.SetItems(sessionItems(sessions))
}

func sessionItems(sessions []*session.Session) []list.Item {
	items := make([]list.Item, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionItem{sess: s})
	}
	return items
}

// Init returns the initial command for the home view.
func (m HomeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the home view.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompting {
			switch msg.String() {
			case tui.KeyEnter:
				path := strings.TrimSpace(m.pathInput.Value())
				if path == "" {
					return m, nil
				}
				m.prompting = false
				m.pathInput.Reset()
				m.pathInput.Blur()
				return m, func() tea.Msg {
					return RequestUploadMsg{Path: path}
				}
			case tui.KeyEsc:
				m.prompting = false
				m.pathInput.Reset()
				m.pathInput.Blur()
				return m, nil
			}
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Enter):
			if item, ok := m.sessions.SelectedItem().(sessionItem); ok {
				return m, func() tea.Msg {
					return tui.OpenSessionMsg{SessionID: item.sess.ID}
				}
			}
		case key.Matches(msg, m.keys.NewChat):
			return m, func() tea.Msg {
				return RequestNewChatMsg{}
			}
		case key.Matches(msg, m.keys.Upload):
			m.prompting = true
			m.pathInput.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Delete):
			if item, ok := m.sessions.SelectedItem().(sessionItem); ok {
				return m, func() tea.Msg {
					return RequestDeleteMsg{SessionID: item.sess.ID}
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sessions.SetSize(msg.Width-8, msg.Height-12)
		m.pathInput.Width = msg.Width - 12
		return m, nil
	}

	m.sessions, cmd = m.sessions.Update(msg)
	return m, cmd
}

// View renders the home view.
func (m HomeModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render("Work Scope Generator")
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Upload your document or chat directly to get your work scope"))
	b.WriteString("\n\n")

	if m.prompting {
		b.WriteString("Upload your document\n\n")
		b.WriteString(m.pathInput.View())
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render("Enter: Upload · Esc: Cancel"))
	} else {
		b.WriteString(m.sessions.View())
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render("Enter: Open · n: New chat · u: Upload · d: Delete · Ctrl+C: Exit"))
	}

	content := b.String()
	boxed := tui.BoxStyle.
		Width(m.width - 4).
		Render(content)

	contentHeight := lipgloss.Height(boxed)
	if m.height > contentHeight {
		padding := (m.height - contentHeight) / 3
		if padding > 0 {
			boxed = strings.Repeat("\n", padding) + boxed
		}
	}

	return boxed
}
