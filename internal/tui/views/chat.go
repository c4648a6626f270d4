package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/workscope-dev/workscope/internal/scope"
	"github.com/workscope-dev/workscope/internal/session"
	"github.com/workscope-dev/workscope/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SendChatMsg is sent when the user submits a chat message.
type SendChatMsg struct {
	SessionID string
	Content   string
}

// CopyRequestMsg is sent when the user copies the last assistant reply.
type CopyRequestMsg struct {
	Text string
}

// ExitChatMsg signals that the user wants to leave the chat view.
type ExitChatMsg struct{}

// ============================================================================
// ChatModel
// ============================================================================

// ChatModel is the view model for one conversation.
type ChatModel struct {
	sess      *session.Session
	textInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	isLoading bool
	status    string
	width     int
	height    int
}

// NewChatModel creates a ChatModel showing the given session.
func NewChatModel(sess *session.Session, width, height int) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 5000
	ti.Width = width - 12
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	vpHeight := height - 12
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}

	vp := viewport.New(vpWidth, vpHeight)
	vp.SetContent(formatTranscript(sess, vpWidth))
	vp.GotoBottom()

	return ChatModel{
		sess:      sess,
		textInput: ti,
		viewport:  vp,
		spinner:   sp,
		width:     width,
		height:    height,
	}
}

// Init returns the initial command for the chat view.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// SetSession replaces the displayed session and refreshes the transcript.
func (m *ChatModel) SetSession(sess *session.Session) {
	m.sess = sess
	m.viewport.SetContent(formatTranscript(sess, m.viewport.Width))
	m.viewport.GotoBottom()
}

// SetLoading toggles the in-flight state. While loading the input is
// disabled so only one call can be outstanding.
func (m *ChatModel) SetLoading(loading bool) {
	m.isLoading = loading
}

// SetStatus sets the transient notification line under the input.
func (m *ChatModel) SetStatus(status string) {
	m.status = status
}

// Session returns the displayed session.
func (m ChatModel) Session() *session.Session {
	return m.sess
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			content := strings.TrimSpace(m.textInput.Value())
			if content == "" {
				return m, nil
			}
			m.textInput.Reset()
			m.status = ""
			sessionID := m.sess.ID
			return m, func() tea.Msg {
				return SendChatMsg{SessionID: sessionID, Content: content}
			}

		case tui.KeyCtrlY:
			if text, ok := lastAssistantContent(m.sess); ok {
				return m, func() tea.Msg {
					return CopyRequestMsg{Text: text}
				}
			}
			return m, nil

		case tui.KeyEsc:
			return m, func() tea.Msg {
				return ExitChatMsg{}
			}
		}

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 12
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 8
		if vpWidth < 20 {
			vpWidth = 20
		}

		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		m.textInput.Width = vpWidth - 4
		m.viewport.SetContent(formatTranscript(m.sess, vpWidth))
		return m, nil
	}

	if !m.isLoading {
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	label := m.sess.Name
	if m.sess.Kind == session.KindDocument {
		label = fmt.Sprintf("%s · document", label)
	}
	b.WriteString(tui.TitleStyle.Render(label))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.isLoading {
		b.WriteString(fmt.Sprintf("%s Thinking...", m.spinner.View()))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render(m.textInput.View()))
	} else {
		b.WriteString(m.textInput.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(tui.ErrorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Enter: Send · Ctrl+Y: Copy last reply · Esc: Back"))

	content := b.String()
	return tui.BoxStyle.
		Width(m.width - 4).
		Render(content)
}

// formatTranscript renders the message history for the viewport. Each
// assistant message goes through the shape classifier so work-scope
// documents render as documents and everything else as text.
func formatTranscript(sess *session.Session, width int) string {
	if sess == nil || len(sess.Messages) == 0 {
		return tui.DimStyle.Render("No messages yet. Start the conversation!")
	}

	var b strings.Builder
	for i, msg := range sess.Messages {
		var prefix string
		var style lipgloss.Style

		switch msg.Role {
		case session.RoleUser:
			prefix = "You"
			style = tui.UserStyle
		case session.RoleAssistant:
			prefix = "Assistant"
			style = tui.AssistantStyle
		default:
			prefix = msg.Role
			style = tui.DimStyle
		}

		b.WriteString(style.Render(prefix))
		b.WriteString(tui.DimStyle.Render(" · " + msg.CreatedAt.Format("15:04:05")))
		b.WriteString("\n")

		if msg.Role == session.RoleAssistant {
			b.WriteString(scope.Render(scope.Classify(msg.Content, ""), width-4))
		} else {
			b.WriteString(msg.Content)
		}

		if i < len(sess.Messages)-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lastAssistantContent(sess *session.Session) (string, bool) {
	if sess == nil {
		return "", false
	}
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == session.RoleAssistant {
			return sess.Messages[i].Content, true
		}
	}
	return "", false
}
