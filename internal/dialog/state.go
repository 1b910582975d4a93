package dialog

import (
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Step int

const (
	Idle Step = iota
	AwaitingLedgerName
	AwaitingLedgerConfirmation
	SelectingLedger
	AwaitingEntryText
	AwaitingEntryConfirmation
)

func (s Step) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingLedgerName:
		return "awaiting ledger name"
	case AwaitingLedgerConfirmation:
		return "awaiting ledger confirmation"
	case SelectingLedger:
		return "selecting ledger"
	case AwaitingEntryText:
		return "awaiting entry text"
	case AwaitingEntryConfirmation:
		return "awaiting entry confirmation"
	default:
		return "unknown"
	}
}

// Conversation is the in-memory progress of one user's dialog.
type Conversation struct {
	Step   Step
	Chat   int64
	Handle string
	Owner  uuid.UUID

	LedgerName string

	// Ledgers is the owner's ledger list taken when entry creation started.
	// It is reused for every page of the same dialog.
	Ledgers    []*ledger.Ledger
	Page       int
	ListingRef MessageRef
	Selected   *ledger.Ledger

	Parsed   *entry.ParsedEntry
	LastText string

	// busy is set while a network call for this conversation is in flight.
	busy bool
}

func (c *Conversation) findLedger(id uuid.UUID) *ledger.Ledger {
	for _, l := range c.Ledgers {
		if l.ID == id {
			return l
		}
	}

	return nil
}
