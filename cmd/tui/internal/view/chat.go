package view

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/dialog"
)

// Handler queues a dialog event and returns the function that processes it.
type Handler interface {
	Admit(ev dialog.Event) func(ctx context.Context)
}

// The console is a single local user talking in a single chat.
const (
	localUser = 1
	localChat = 1
)

type ChatModel struct {
	CommonModel

	console *Console
	handler Handler
	handle  string

	input    textinput.Model
	viewport viewport.Model

	// buttonFocus moves keyboard input from the text box to the keyboard of
	// the newest bot message.
	buttonFocus bool
	cursor      int
}

func NewChatModel(console *Console, handler Handler, handle string) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message or /help"
	ti.Prompt = "> "
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	vp := viewport.New(80, 20)

	return ChatModel{
		console:  console,
		handler:  handler,
		handle:   handle,
		input:    ti,
		viewport: vp,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.dispatch(dialog.Event{Text: "/start"}, ""))
}

// dispatch echoes the user's input, queues the event in typing order and runs
// the handler off the UI goroutine.
func (m ChatModel) dispatch(ev dialog.Event, echo string) tea.Cmd {
	ev.UserID = localUser
	ev.Chat = localChat
	ev.Handle = m.handle

	if echo != "" {
		m.console.Echo(echo)
	}

	handle := m.handler.Admit(ev)

	return func() tea.Msg {
		handle(context.Background())
		return nil
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = max(msg.Height-8, 5)
		m.input.Width = max(msg.Width-6, 10)
		m.refresh()

		return m, nil

	case TranscriptMsg:
		m.refresh()

		if _, buttons := m.console.Buttons(); len(buttons) == 0 {
			m.blurButtons()
		} else if m.cursor >= len(buttons) {
			m.cursor = 0
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			if _, buttons := m.console.Buttons(); len(buttons) > 0 && !m.buttonFocus {
				m.buttonFocus = true
				m.cursor = 0
				m.input.Blur()

				return m, nil
			}

			m.blurButtons()

			return m, nil
		}

		if m.buttonFocus {
			return m.updateButtons(msg)
		}

		if msg.Type == tea.KeyEnter {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}

			m.input.Reset()

			return m, m.dispatch(dialog.Event{Text: text}, text)
		}
	}

	var cmds []tea.Cmd

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatModel) updateButtons(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, buttons := m.console.Buttons()
	if len(buttons) == 0 {
		m.blurButtons()
		return m, nil
	}

	switch msg.String() {
	case "left", "up", "h", "k":
		m.cursor = (m.cursor - 1 + len(buttons)) % len(buttons)
	case "right", "down", "l", "j":
		m.cursor = (m.cursor + 1) % len(buttons)
	case "enter", " ":
		pressed := buttons[min(m.cursor, len(buttons)-1)]
		m.blurButtons()

		return m, m.dispatch(dialog.Event{Callback: pressed.Data, MessageID: id}, "["+pressed.Text+"]")
	}

	return m, nil
}

func (m *ChatModel) blurButtons() {
	m.buttonFocus = false
	m.cursor = 0
	m.input.Focus()
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(renderTranscript(m.console.Lines(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m ChatModel) View() string {
	header := titleStyle.Render("Tally") + "  " + mutedStyle.Render("@"+m.handle)

	help := "enter send • tab buttons • esc back • ctrl+c quit"
	if m.buttonFocus {
		help = "←/→ choose • enter press • tab back to typing"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.viewport.View()),
		m.renderButtons(),
		m.input.View(),
		mutedStyle.Render(help),
	)
}

func (m ChatModel) renderButtons() string {
	_, buttons := m.console.Buttons()
	if len(buttons) == 0 {
		return ""
	}

	parts := make([]string, len(buttons))
	for i, b := range buttons {
		style := buttonStyle
		if m.buttonFocus && i == m.cursor {
			style = activeButtonStyle
		}

		parts[i] = style.Render(b.Text)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
