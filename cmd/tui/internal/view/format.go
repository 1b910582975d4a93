package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	activeButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("46")).
				Foreground(lipgloss.Color("46"))
)

// renderTranscript lays out the conversation, wrapping each message to width.
// Keyboards are drawn separately under the transcript.
func renderTranscript(lines []Line, width int) string {
	if width <= 0 {
		width = 80
	}

	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder

	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}

		if l.FromUser {
			b.WriteString(wrap.Render(userStyle.Render("you: ") + l.Message.Text))
			continue
		}

		b.WriteString(wrap.Render(botStyle.Render(l.Message.Text)))
	}

	return b.String()
}
