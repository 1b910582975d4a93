package view

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tally/internal/dialog"
)

// Line is one message in the console transcript.
type Line struct {
	ID       int
	FromUser bool
	Message  dialog.Message
}

// TranscriptMsg tells the chat view that the transcript changed.
type TranscriptMsg struct{}

// Console is an in-process dialog.Transport that keeps the conversation as a
// transcript. Bot replies arrive from handler goroutines, so every change is
// announced through notify rather than returned to the caller.
type Console struct {
	mu     sync.Mutex
	nextID int
	lines  []Line
	notify func(tea.Msg)
}

func NewConsole() *Console {
	return &Console{notify: func(tea.Msg) {}}
}

// Attach routes change notifications to a running program.
func (c *Console) Attach(notify func(tea.Msg)) {
	c.mu.Lock()
	c.notify = notify
	c.mu.Unlock()
}

func (c *Console) append(fromUser bool, msg dialog.Message) int {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.lines = append(c.lines, Line{ID: id, FromUser: fromUser, Message: msg})
	notify := c.notify
	c.mu.Unlock()

	notify(TranscriptMsg{})

	return id
}

// Echo records what the user typed or pressed.
func (c *Console) Echo(text string) {
	c.append(true, dialog.Message{Text: text})
}

func (c *Console) Send(_ context.Context, chat int64, msg dialog.Message) (dialog.MessageRef, error) {
	id := c.append(false, msg)
	return dialog.MessageRef{Chat: chat, ID: id}, nil
}

func (c *Console) Edit(_ context.Context, ref dialog.MessageRef, msg dialog.Message) error {
	c.mu.Lock()

	i := c.index(ref.ID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("message %d not found", ref.ID)
	}

	c.lines[i].Message = msg
	notify := c.notify
	c.mu.Unlock()

	notify(TranscriptMsg{})

	return nil
}

func (c *Console) Delete(_ context.Context, ref dialog.MessageRef) error {
	c.mu.Lock()

	i := c.index(ref.ID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("message %d not found", ref.ID)
	}

	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	notify := c.notify
	c.mu.Unlock()

	notify(TranscriptMsg{})

	return nil
}

func (c *Console) index(id int) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}

	return -1
}

// Lines returns a copy of the transcript.
func (c *Console) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)

	return out
}

// Buttons returns the keyboard of the newest bot message, if it has one, and
// that message's ID.
func (c *Console) Buttons() (int, []dialog.Button) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.lines) - 1; i >= 0; i-- {
		l := c.lines[i]
		if l.FromUser {
			continue
		}

		if len(l.Message.Buttons) == 0 {
			return 0, nil
		}

		var flat []dialog.Button
		for _, row := range l.Message.Buttons {
			flat = append(flat, row...)
		}

		return l.ID, flat
	}

	return 0, nil
}
