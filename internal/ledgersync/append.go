package ledgersync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/saga"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

const (
	stepWaitLedger  = "wait-for-ledger"
	stepReadBalance = "read-balance"
	stepAppendRow   = "append-row"

	voucherTokenLength = 12
)

// Row is one ledger line as written to the spreadsheet.
type Row struct {
	Date          string
	VoucherName   string
	VoucherNumber string
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Balance       decimal.Decimal
	PartyName     string
}

// Cells renders the row in sheet column order. A zero debit or credit is left blank.
func (r Row) Cells() []string {
	return []string{
		r.Date,
		r.VoucherName,
		r.VoucherNumber,
		r.Description,
		amountCell(r.Debit),
		amountCell(r.Credit),
		r.Balance.String(),
		r.PartyName,
	}
}

func amountCell(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}

	return d.String()
}

type AppendResult struct {
	Ledger          *ledger.Ledger
	Row             Row
	PreviousBalance decimal.Decimal
	SheetURL        string
}

// AppendEntry writes e as a new row of the ledger's spreadsheet, carrying the
// running balance forward. Appends to the same ledger are serialized so that
// concurrent entries never read the same previous balance.
func (s *Synchronizer) AppendEntry(ctx context.Context, ledgerID uuid.UUID, e *entry.ParsedEntry) (*AppendResult, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}

	l, err := s.ledgers.Get(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger %s: %w", ledgerID, err)
	}

	if !l.IsComplete() {
		return nil, fmt.Errorf("%w: ledger %s has no spreadsheet", ledger.ErrNotFound, ledgerID)
	}

	unlock, err := s.locks.lock(ctx, l.ID)
	if err != nil {
		return nil, &AppendError{LedgerID: l.ID, Step: stepWaitLedger, Err: err}
	}

	previous, row, err := s.appendRow(ctx, l, e)

	unlock()

	if err != nil {
		return nil, err
	}

	slog.Info("entry appended",
		"ledger_id", l.ID,
		"voucher", row.VoucherNumber,
		"previous_balance", previous.String(),
		"balance", row.Balance.String(),
	)

	s.publish(ctx, events.TopicEntryAppended, l.ID.String(), events.EntryAppended{
		LedgerID:      l.ID,
		VoucherNumber: row.VoucherNumber,
		Debit:         row.Debit,
		Credit:        row.Credit,
		Balance:       row.Balance,
		OccurredAt:    s.now(),
	})

	return &AppendResult{
		Ledger:          l,
		Row:             row,
		PreviousBalance: previous,
		SheetURL:        sheetURL(l),
	}, nil
}

// appendRow runs the read-balance and append-row saga. Callers hold the ledger's lock.
func (s *Synchronizer) appendRow(ctx context.Context, l *ledger.Ledger, e *entry.ParsedEntry) (decimal.Decimal, Row, error) {
	sheetID := *l.SheetRef

	var (
		previous decimal.Decimal
		row      Row
	)

	steps := []saga.Step{
		{
			Name: stepReadBalance,
			Run: func(ctx context.Context) error {
				rows, err := s.sheets.ReadRows(ctx, sheetID, sheet.DataRange)
				if err != nil {
					return err
				}

				previous = lastBalance(rows, sheetID)
				row = newRow(e, previous)

				return nil
			},
		},
		{
			Name: stepAppendRow,
			Run: func(ctx context.Context) error {
				return s.sheets.AppendRow(ctx, sheetID, sheet.DataRange, row.Cells())
			},
		},
	}

	if err := saga.Run(ctx, "append-entry", steps...); err != nil {
		var stepErr *saga.StepError
		if errors.As(err, &stepErr) {
			return previous, row, &AppendError{LedgerID: l.ID, Step: stepErr.Step, Err: stepErr.Err}
		}

		return previous, row, &AppendError{LedgerID: l.ID, Err: err}
	}

	return previous, row, nil
}

func validateEntry(e *entry.ParsedEntry) error {
	if e == nil {
		return fmt.Errorf("%w: entry is required", ledger.ErrValidation)
	}

	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ledger.ErrValidation)
	}

	if e.Debit.IsZero() == e.Credit.IsZero() {
		return fmt.Errorf("%w: exactly one of debit or credit must be set", ledger.ErrValidation)
	}

	return nil
}

func newRow(e *entry.ParsedEntry, previous decimal.Decimal) Row {
	voucher := strings.TrimSpace(e.VoucherNumber)
	if voucher == "" {
		voucher = VoucherToken()
	}

	return Row{
		Date:          e.FormattedDate(),
		VoucherName:   e.VoucherName,
		VoucherNumber: voucher,
		Description:   e.Description,
		Debit:         e.Debit,
		Credit:        e.Credit,
		Balance:       previous.Add(e.Credit).Sub(e.Debit),
		PartyName:     e.PartyName,
	}
}

// lastBalance reads the balance column of the last data row. A ledger with no
// entries, or an unreadable balance cell, starts from zero.
func lastBalance(rows [][]string, sheetID string) decimal.Decimal {
	if len(rows) <= sheet.HeaderRows {
		return decimal.Zero
	}

	last := rows[len(rows)-1]
	if len(last) <= sheet.BalanceColumn {
		slog.Warn("last ledger row has no balance", "sheet_id", sheetID, "row", len(rows))
		return decimal.Zero
	}

	balance, err := parseAmount(last[sheet.BalanceColumn])
	if err != nil {
		slog.Warn("unreadable balance cell", "sheet_id", sheetID, "row", len(rows), "value", last[sheet.BalanceColumn], "error", err)
		return decimal.Zero
	}

	return balance
}

var amountReplacer = strings.NewReplacer(",", "", "₹", "", " ", "")

func parseAmount(s string) (decimal.Decimal, error) {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(s)
}

// VoucherToken returns a random voucher number.
func VoucherToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:voucherTokenLength]
}
