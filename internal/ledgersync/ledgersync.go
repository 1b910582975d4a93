// Package ledgersync keeps ledger records and their spreadsheets consistent.
package ledgersync

//go:generate mockgen -source=ledgersync.go -destination=ledgers_mock.go -package=ledgersync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

// Ledgers is the ledger store the sagas write to.
type Ledgers interface {
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Create(ctx context.Context, params ledger.CreateParams) (*ledger.Ledger, error)
	Get(ctx context.Context, id uuid.UUID) (*ledger.Ledger, error)
	AttachSheetRef(ctx context.Context, id uuid.UUID, ref string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const defaultPublishTimeout = 3 * time.Second

type Synchronizer struct {
	ledgers   Ledgers
	sheets    sheet.Store
	publisher events.Publisher
	shareRole string
	now       func() time.Time

	// publishTimeout bounds each event publish after a saga commits.
	publishTimeout time.Duration

	locks *keyedLock
}

type Option func(*Synchronizer)

func WithPublisher(p events.Publisher) Option {
	return func(s *Synchronizer) { s.publisher = p }
}

func WithShareRole(role string) Option {
	return func(s *Synchronizer) { s.shareRole = role }
}

func WithPublishTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

func New(ledgers Ledgers, sheets sheet.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		ledgers:   ledgers,
		sheets:    sheets,
		publisher: events.Nop{},
		shareRole: "writer",
		now:       time.Now,

		publishTimeout: defaultPublishTimeout,
		locks:          newKeyedLock(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// publish runs after the outcome is settled, so it ignores the caller's
// cancellation but never waits longer than publishTimeout.
func (s *Synchronizer) publish(ctx context.Context, topic, key string, event any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		slog.Warn("publishing event", "topic", topic, "key", key, "error", err)
	}
}

func sheetURL(l *ledger.Ledger) string {
	if l.SheetRef == nil {
		return ""
	}

	return sheet.URL(*l.SheetRef)
}

// PartialFailureError means the ledger record was written but its spreadsheet
// could not be set up. The record has been removed again unless Compensated is false.
type PartialFailureError struct {
	Title       string
	Step        string
	Compensated bool
	Err         error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("ledger %q partially created (failed at %s, compensated=%t): %v", e.Title, e.Step, e.Compensated, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// AppendError means an entry could not be written to the ledger's spreadsheet.
// The row set is left unchanged.
type AppendError struct {
	LedgerID uuid.UUID
	Step     string
	Err      error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("appending to ledger %s (at %s): %v", e.LedgerID, e.Step, e.Err)
}

func (e *AppendError) Unwrap() error {
	return e.Err
}
