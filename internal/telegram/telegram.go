// Package telegram connects the dialog machine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/tally/internal/dialog"
)

// Handler queues an event and returns the function that processes it.
type Handler interface {
	Admit(ev dialog.Event) func(ctx context.Context)
}

type Config struct {
	Token       string
	PollTimeout int
	// SendInterval and SendBurst bound outbound API calls.
	SendInterval time.Duration
	SendBurst    int
	Debug        bool
}

type Bot struct {
	api         *tgbotapi.BotAPI
	limiter     *rate.Limiter
	pollTimeout int
}

func New(cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	api.Debug = cfg.Debug

	burst := cfg.SendBurst
	if burst <= 0 {
		burst = 1
	}

	slog.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:         api,
		limiter:     rate.NewLimiter(rate.Every(cfg.SendInterval), burst),
		pollTimeout: cfg.PollTimeout,
	}, nil
}

// Run long-polls for updates and hands each one to h on its own goroutine
// until ctx is cancelled. It waits for in-flight handlers before returning.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)

	serve(ctx, updates, h, func(id string) { b.answer(ctx, id) })

	b.api.StopReceivingUpdates()
	slog.Info("telegram polling stopped")

	return nil
}

// serve admits updates in the order they arrive, then runs each on its own
// goroutine. Admission order is what keeps one user's events in sequence.
func serve(ctx context.Context, updates <-chan tgbotapi.Update, h Handler, answer func(id string)) {
	var wg sync.WaitGroup

	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			ev, ok := toEvent(update)
			if !ok {
				continue
			}

			if update.CallbackQuery != nil {
				answer(update.CallbackQuery.ID)
			}

			handle := h.Admit(ev)

			wg.Add(1)

			go func() {
				defer wg.Done()
				handle(ctx)
			}()
		}
	}
}

func (b *Bot) answer(ctx context.Context, callbackID string) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		slog.Warn("answering callback", "error", err)
	}
}

func (b *Bot) Send(ctx context.Context, chat int64, msg dialog.Message) (dialog.MessageRef, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return dialog.MessageRef{}, err
	}

	out := tgbotapi.NewMessage(chat, msg.Text)
	out.DisableWebPagePreview = true

	if kb := keyboard(msg.Buttons); kb != nil {
		out.ReplyMarkup = *kb
	}

	sent, err := b.api.Send(out)
	if err != nil {
		return dialog.MessageRef{}, fmt.Errorf("sending message to %d: %w", chat, err)
	}

	return dialog.MessageRef{Chat: chat, ID: sent.MessageID}, nil
}

func (b *Bot) Edit(ctx context.Context, ref dialog.MessageRef, msg dialog.Message) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(ref.Chat, ref.ID, msg.Text)
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = keyboard(msg.Buttons)

	if _, err := b.api.Send(edit); err != nil && !notModified(err) {
		return fmt.Errorf("editing message %d: %w", ref.ID, err)
	}

	return nil
}

func (b *Bot) Delete(ctx context.Context, ref dialog.MessageRef) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(ref.Chat, ref.ID)); err != nil {
		return fmt.Errorf("deleting message %d: %w", ref.ID, err)
	}

	return nil
}

// notModified reports Telegram's refusal to apply an edit that changes nothing.
func notModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func keyboard(rows [][]dialog.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))

	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}

		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(out...)

	return &kb
}

// toEvent converts an update into a dialog event. Updates the dialog does not
// handle (edits, channel posts, joins) are skipped.
func toEvent(u tgbotapi.Update) (dialog.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return dialog.Event{}, false
		}

		return dialog.Event{
			UserID:    cq.From.ID,
			Chat:      cq.Message.Chat.ID,
			Handle:    handleOf(cq.From),
			Callback:  cq.Data,
			MessageID: cq.Message.MessageID,
		}, true
	case u.Message != nil:
		msg := u.Message
		if msg.From == nil || msg.Chat == nil || msg.Text == "" {
			return dialog.Event{}, false
		}

		return dialog.Event{
			UserID: msg.From.ID,
			Chat:   msg.Chat.ID,
			Handle: handleOf(msg.From),
			Text:   msg.Text,
		}, true
	default:
		return dialog.Event{}, false
	}
}

func handleOf(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}

	return u.FirstName
}
