// Package dialog drives per-user conversations that create ledgers and add entries to them.
package dialog

//go:generate mockgen -source=dialog.go -destination=collaborators_mock.go -package=dialog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/identity"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledgersync"
)

// Event is one inbound update from a chat user. Exactly one of Text and
// Callback is set.
type Event struct {
	UserID int64
	Chat   int64
	Handle string
	Text   string
	// Callback is the token of a pressed inline button.
	Callback string
	// MessageID is the message carrying the pressed button.
	MessageID int
}

type MessageRef struct {
	Chat int64
	ID   int
}

type Button struct {
	Text string
	Data string
}

type Message struct {
	Text    string
	Buttons [][]Button
}

// Transport delivers outbound messages to a chat.
type Transport interface {
	Send(ctx context.Context, chat int64, msg Message) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, msg Message) error
	Delete(ctx context.Context, ref MessageRef) error
}

type Users interface {
	Resolve(ctx context.Context, handle string) (*identity.User, error)
}

type Ledgers interface {
	FindByOwner(ctx context.Context, owner uuid.UUID) ([]*ledger.Ledger, error)
}

type Parser interface {
	Parse(ctx context.Context, text string) (*entry.ParsedEntry, error)
}

type Synchronizer interface {
	CreateLedger(ctx context.Context, req ledgersync.CreateRequest) (*ledgersync.CreateResult, error)
	AppendEntry(ctx context.Context, ledgerID uuid.UUID, e *entry.ParsedEntry) (*ledgersync.AppendResult, error)
}

// Tokens issues short-lived API tokens for a chat handle.
type Tokens interface {
	IssueToken(handle string) (string, time.Time, error)
}
