package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/identity"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledgersync"
	"github.com/MrJamesThe3rd/tally/internal/pagination"
)

func (m *Machine) start(ctx context.Context, t *turn) error {
	return m.reply(ctx, t, welcomeText(t.ev.Handle))
}

func (m *Machine) help(ctx context.Context, t *turn) error {
	return m.reply(ctx, t, helpText())
}

func (m *Machine) status(ctx context.Context, t *turn) error {
	return m.reply(ctx, t, statusText(t.s.conv))
}

func (m *Machine) cancel(ctx context.Context, t *turn) error {
	if t.s.conv == nil {
		return m.reply(ctx, t, msgNothingToCancel)
	}

	slog.Info("conversation cancelled", "user_id", t.ev.UserID, "step", t.s.conv.Step.String())
	t.s.conv = nil

	return m.reply(ctx, t, msgCancelled)
}

// issueToken replies with a short-lived API token. It leaves any conversation
// in progress untouched.
func (m *Machine) issueToken(ctx context.Context, t *turn) error {
	if m.tokens == nil {
		return m.reply(ctx, t, msgTokensDisabled)
	}

	var (
		user *identity.User
		err  error
	)

	m.sessions.suspend(t.s, func() {
		user, err = m.users.Resolve(ctx, t.ev.Handle)
	})

	switch {
	case errors.Is(err, identity.ErrNotFound):
		return m.reply(ctx, t, msgNoAccount)
	case err != nil:
		slog.Error("resolving user for token", "user_id", t.ev.UserID, "error", err)
		return m.reply(ctx, t, msgSystemError)
	}

	token, expires, err := m.tokens.IssueToken(user.Handle)
	if err != nil {
		slog.Error("issuing api token", "user_id", t.ev.UserID, "error", err)
		return m.reply(ctx, t, msgSystemError)
	}

	slog.Info("api token issued", "user_id", t.ev.UserID, "expires", expires)

	return m.reply(ctx, t, tokenText(token, expires))
}

// restart installs a fresh conversation, superseding whatever was in progress.
func (m *Machine) restart(t *turn, step Step) *Conversation {
	conv := &Conversation{Step: step, Chat: t.ev.Chat, Handle: t.ev.Handle}
	t.s.conv = conv
	t.conv = conv

	return conv
}

func (m *Machine) beginLedger(ctx context.Context, t *turn) error {
	m.restart(t, AwaitingLedgerName)

	return m.reply(ctx, t, msgAskLedgerName)
}

func (m *Machine) receiveLedgerName(ctx context.Context, t *turn) error {
	conv := t.s.conv

	name, err := ledger.ValidateTitle(t.ev.Text)
	if err != nil {
		return m.reply(ctx, t, invalidNameText(t.ev.Text))
	}

	conv.LedgerName = name
	conv.Step = AwaitingLedgerConfirmation

	_, err = m.send(ctx, t, confirmLedgerMessage(name))

	return err
}

func (m *Machine) declineLedger(ctx context.Context, t *turn) error {
	t.s.conv = nil

	return m.replace(ctx, t, Message{Text: msgLedgerDeclined})
}

func (m *Machine) confirmLedger(ctx context.Context, t *turn) error {
	conv := t.s.conv
	// Consumed before the saga starts so a repeated press finds nothing to confirm.
	t.s.conv = nil

	if err := m.replace(ctx, t, Message{Text: msgCreatingLedger}); err != nil {
		slog.Warn("showing ledger progress", "user_id", t.ev.UserID, "error", err)
	}

	var (
		res *ledgersync.CreateResult
		err error
	)

	m.sessions.suspend(t.s, func() {
		user, resolveErr := m.users.Resolve(ctx, conv.Handle)
		if resolveErr != nil {
			err = resolveErr
			return
		}

		res, err = m.sync.CreateLedger(ctx, ledgersync.CreateRequest{
			Title:       conv.LedgerName,
			Owner:       user.ID,
			OwnerHandle: conv.Handle,
		})
	})

	var partial *ledgersync.PartialFailureError

	switch {
	case err == nil:
		return m.replace(ctx, t, Message{Text: ledgerCreatedText(res, conv.Handle)})
	case errors.Is(err, identity.ErrNotFound):
		return m.replace(ctx, t, Message{Text: msgNoAccount})
	case errors.As(err, &partial):
		slog.Warn("ledger creation partially failed", "user_id", t.ev.UserID, "title", conv.LedgerName, "error", err)
		return m.replace(ctx, t, Message{Text: partialFailureText(partial)})
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrValidation):
		reprompt := t.s.conv == nil
		if reprompt {
			m.restart(t, AwaitingLedgerName)
		}

		text := ledgerConflictText(conv.LedgerName, reprompt)
		if errors.Is(err, ledger.ErrValidation) {
			text = invalidNameText(conv.LedgerName)
		}

		return m.replace(ctx, t, Message{Text: text})
	default:
		slog.Error("creating ledger", "user_id", t.ev.UserID, "title", conv.LedgerName, "error", err)
		return m.replace(ctx, t, Message{Text: msgSystemError})
	}
}

func (m *Machine) beginEntry(ctx context.Context, t *turn) error {
	conv := m.restart(t, SelectingLedger)
	conv.busy = true

	var (
		user    *identity.User
		ledgers []*ledger.Ledger
		err     error
	)

	m.sessions.suspend(t.s, func() {
		user, err = m.users.Resolve(ctx, conv.Handle)
		if err != nil {
			return
		}

		ledgers, err = m.ledgers.FindByOwner(ctx, user.ID)
	})

	if t.s.conv != conv {
		slog.Info("ledger listing superseded", "user_id", t.ev.UserID)
		return nil
	}

	conv.busy = false

	switch {
	case errors.Is(err, identity.ErrNotFound):
		t.s.conv = nil
		return m.reply(ctx, t, msgNoAccount)
	case err != nil:
		return fmt.Errorf("listing ledgers for %s: %w", conv.Handle, err)
	case len(ledgers) == 0:
		t.s.conv = nil
		return m.reply(ctx, t, msgNoLedgers)
	}

	conv.Owner = user.ID
	conv.Ledgers = ledgers
	conv.Page = 0

	ref, err := m.send(ctx, t, ledgerPageMessage(pagination.Paginate(ledgers, m.pageSize, 0)))
	if err != nil {
		return err
	}

	conv.ListingRef = ref

	return nil
}

// turnPage redraws the ledger listing in place for the requested page.
func (m *Machine) turnPage(ctx context.Context, t *turn) error {
	conv := t.s.conv

	page := pagination.Paginate(conv.Ledgers, m.pageSize, t.in.Page)
	conv.Page = page.Index

	ref := conv.ListingRef
	if t.ev.MessageID != 0 {
		ref = MessageRef{Chat: t.ev.Chat, ID: t.ev.MessageID}
	}

	msg := ledgerPageMessage(page)

	err := m.transport.Edit(ctx, ref, msg)
	if err == nil {
		conv.ListingRef = ref
		return nil
	}

	slog.Warn("editing ledger listing, replacing it", "user_id", t.ev.UserID, "error", err)

	if err := m.transport.Delete(ctx, ref); err != nil {
		slog.Warn("deleting ledger listing", "user_id", t.ev.UserID, "error", err)
	}

	newRef, err := m.send(ctx, t, msg)
	if err != nil {
		return err
	}

	conv.ListingRef = newRef

	return nil
}

func (m *Machine) selectLedger(ctx context.Context, t *turn) error {
	conv := t.s.conv

	l := conv.findLedger(t.in.Ledger)
	if l == nil {
		t.s.conv = nil
		return m.reply(ctx, t, msgLedgerGone)
	}

	conv.Selected = l
	conv.Step = AwaitingEntryText

	return m.replace(ctx, t, Message{Text: ledgerSelectedText(l)})
}

func (m *Machine) receiveEntryText(ctx context.Context, t *turn) error {
	return m.parseEntry(ctx, t, t.ev.Text)
}

// retryEntry resends the last entry text after the classifier was unavailable.
func (m *Machine) retryEntry(ctx context.Context, t *turn) error {
	conv := t.s.conv
	if conv.LastText == "" {
		return nil
	}

	return m.parseEntry(ctx, t, conv.LastText)
}

func (m *Machine) parseEntry(ctx context.Context, t *turn, text string) error {
	conv := t.s.conv
	conv.LastText = text
	conv.busy = true

	progress, progressErr := m.send(ctx, t, Message{Text: msgProcessingEntry})
	if progressErr != nil {
		slog.Warn("showing entry progress", "user_id", t.ev.UserID, "error", progressErr)
	}

	var (
		parsed *entry.ParsedEntry
		err    error
	)

	m.sessions.suspend(t.s, func() {
		parsed, err = m.parser.Parse(ctx, text)

		if progressErr == nil {
			if delErr := m.transport.Delete(ctx, progress); delErr != nil {
				slog.Debug("deleting progress message", "error", delErr)
			}
		}
	})

	if t.s.conv != conv {
		slog.Info("parsed entry dropped, conversation changed", "user_id", t.ev.UserID)
		return nil
	}

	conv.busy = false

	var low *entry.LowConfidenceError

	switch {
	case err == nil:
		conv.Parsed = parsed
		conv.Step = AwaitingEntryConfirmation

		_, err = m.send(ctx, t, confirmEntryMessage(m.currency, parsed))

		return err
	case errors.As(err, &low):
		reason := low.Entry.Reasoning
		if reason == "" {
			reason = low.Reason
		}

		return m.reply(ctx, t, lowConfidenceText(reason))
	case errors.Is(err, entry.ErrServiceUnavailable):
		slog.Warn("classifier unavailable", "user_id", t.ev.UserID, "error", err)

		_, err = m.send(ctx, t, classifierDownMessage())

		return err
	case errors.Is(err, entry.ErrMalformedResponse):
		return m.reply(ctx, t, msgMalformedReply)
	case errors.Is(err, entry.ErrEmptyText):
		return m.reply(ctx, t, msgEmptyEntry)
	default:
		return fmt.Errorf("parsing entry: %w", err)
	}
}

func (m *Machine) declineEntry(ctx context.Context, t *turn) error {
	return m.reenterEntry(ctx, t, msgEntryDeclined)
}

func (m *Machine) editEntry(ctx context.Context, t *turn) error {
	return m.reenterEntry(ctx, t, msgEditEntry)
}

func (m *Machine) reenterEntry(ctx context.Context, t *turn, text string) error {
	conv := t.s.conv
	conv.Parsed = nil
	conv.Step = AwaitingEntryText

	return m.replace(ctx, t, Message{Text: text})
}

func (m *Machine) confirmEntry(ctx context.Context, t *turn) error {
	conv := t.s.conv
	t.s.conv = nil

	if err := m.replace(ctx, t, Message{Text: msgAddingEntry}); err != nil {
		slog.Warn("showing entry progress", "user_id", t.ev.UserID, "error", err)
	}

	var (
		res *ledgersync.AppendResult
		err error
	)

	m.sessions.suspend(t.s, func() {
		res, err = m.sync.AppendEntry(ctx, conv.Selected.ID, conv.Parsed)
	})

	var appendErr *ledgersync.AppendError

	switch {
	case err == nil:
		return m.replace(ctx, t, Message{Text: entryAddedText(m.currency, res, conv.Parsed)})
	case errors.As(err, &appendErr):
		slog.Warn("append failed", "user_id", t.ev.UserID, "ledger_id", conv.Selected.ID, "error", err)
		return m.replace(ctx, t, Message{Text: msgAppendFailed})
	case errors.Is(err, ledger.ErrNotFound):
		return m.replace(ctx, t, Message{Text: msgLedgerGone})
	default:
		slog.Error("appending entry", "user_id", t.ev.UserID, "ledger_id", conv.Selected.ID, "error", err)
		return m.replace(ctx, t, Message{Text: msgSystemError})
	}
}
