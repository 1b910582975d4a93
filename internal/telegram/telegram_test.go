package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/dialog"
)

func TestToEvent(t *testing.T) {
	user := &tgbotapi.User{ID: 42, UserName: "ravi", FirstName: "Ravi"}
	chat := &tgbotapi.Chat{ID: 7}

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   dialog.Event
		wantOK bool
	}{
		{
			name:   "Text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: chat, Text: "/new_l"}},
			want:   dialog.Event{UserID: 42, Chat: 7, Handle: "ravi", Text: "/new_l"},
			wantOK: true,
		},
		{
			name: "Callback",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "cb",
				From:    user,
				Data:    "ledger_page:1",
				Message: &tgbotapi.Message{MessageID: 55, Chat: chat},
			}},
			want:   dialog.Event{UserID: 42, Chat: 7, Handle: "ravi", Callback: "ledger_page:1", MessageID: 55},
			wantOK: true,
		},
		{
			name:   "FirstNameWhenNoUsername",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1, FirstName: "Asha"}, Chat: chat, Text: "hi"}},
			want:   dialog.Event{UserID: 1, Chat: 7, Handle: "Asha", Text: "hi"},
			wantOK: true,
		},
		{
			name:   "PhotoWithoutText",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: chat}},
		},
		{
			name:   "ChannelPost",
			update: tgbotapi.Update{ChannelPost: &tgbotapi.Message{Chat: chat, Text: "x"}},
		},
		{
			name:   "InlineCallbackWithoutMessage",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", From: user, Data: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toEvent(tt.update)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyboard(t *testing.T) {
	assert.Nil(t, keyboard(nil))

	kb := keyboard([][]dialog.Button{
		{{Text: "Yes", Data: "confirm_ledger_yes"}, {Text: "No", Data: "confirm_ledger_no"}},
		{{Text: "Next", Data: "ledger_page:1"}},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "confirm_ledger_no", *kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "Next", kb.InlineKeyboard[1][0].Text)
}

func TestNotModified(t *testing.T) {
	assert.True(t, notModified(errors.New("Bad Request: message is not modified: specified new message content")))
	assert.False(t, notModified(errors.New("Bad Request: message to edit not found")))
}

type orderingHandler struct {
	mu       sync.Mutex
	admitted []string
	handled  int
}

func (o *orderingHandler) Admit(ev dialog.Event) func(context.Context) {
	o.mu.Lock()
	o.admitted = append(o.admitted, ev.Text+ev.Callback)
	o.mu.Unlock()

	return func(context.Context) {
		o.mu.Lock()
		o.handled++
		o.mu.Unlock()
	}
}

func TestServe_AdmitsInArrivalOrder(t *testing.T) {
	user := &tgbotapi.User{ID: 42, UserName: "ravi"}
	chat := &tgbotapi.Chat{ID: 7}

	updates := make(chan tgbotapi.Update, 4)
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: chat, Text: "/new_e"}}
	updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    user,
		Data:    "select_ledger:1",
		Message: &tgbotapi.Message{MessageID: 3, Chat: chat},
	}}
	updates <- tgbotapi.Update{EditedMessage: &tgbotapi.Message{From: user, Chat: chat, Text: "ignored"}}
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: chat, Text: "paid 500"}}
	close(updates)

	h := &orderingHandler{}

	var answered []string

	serve(context.Background(), updates, h, func(id string) { answered = append(answered, id) })

	assert.Equal(t, []string{"/new_e", "select_ledger:1", "paid 500"}, h.admitted)
	assert.Equal(t, 3, h.handled)
	assert.Equal(t, []string{"cb-1"}, answered)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := &orderingHandler{}
	serve(ctx, make(chan tgbotapi.Update), h, func(string) {})

	assert.Empty(t, h.admitted)
}
