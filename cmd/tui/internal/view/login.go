package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoggedInMsg carries the chat handle the console user identified as.
type LoggedInMsg struct {
	Handle string
}

// LoginModel asks which account the console should act as. The handle must
// belong to a registered user for ledger commands to work.
type LoginModel struct {
	CommonModel

	form   *huh.Form
	handle string
}

func NewLoginModel(handle string) LoginModel {
	m := LoginModel{handle: handle}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("handle").
				Title("Chat handle").
				Placeholder("username").
				Value(&m.handle).
				Validate(func(s string) error {
					if strings.TrimPrefix(strings.TrimSpace(s), "@") == "" {
						return fmt.Errorf("handle cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	return m
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	handle := strings.TrimPrefix(strings.TrimSpace(m.form.GetString("handle")), "@")

	return m, func() tea.Msg { return LoggedInMsg{Handle: handle} }
}

func (m LoginModel) View() string {
	return lipgloss.NewStyle().Padding(1).Render(
		titleStyle.Render("Tally console") + "\n\n" + m.form.View(),
	)
}
