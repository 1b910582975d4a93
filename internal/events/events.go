// Package events defines the domain events emitted after a ledger changes.
package events

//go:generate mockgen -source=events.go -destination=publisher_mock.go -package=events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicLedgerCreated = "ledger.created"
	TopicEntryAppended = "ledger.entry_appended"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

type LedgerCreated struct {
	LedgerID   uuid.UUID `json:"ledger_id"`
	Title      string    `json:"title"`
	OwnerID    uuid.UUID `json:"owner_id"`
	SheetID    string    `json:"sheet_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EntryAppended struct {
	LedgerID      uuid.UUID       `json:"ledger_id"`
	VoucherNumber string          `json:"voucher_number"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error {
	return nil
}
