// Package export renders a ledger's sheet as a downloadable statement.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

type Ledgers interface {
	Get(ctx context.Context, id uuid.UUID) (*ledger.Ledger, error)
}

// Statement is a snapshot of a ledger's entry rows.
type Statement struct {
	Ledger  *ledger.Ledger
	Rows    [][]string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

type Service struct {
	ledgers Ledgers
	sheets  sheet.Store
	now     func() time.Time
}

func NewService(ledgers Ledgers, sheets sheet.Store) *Service {
	return &Service{ledgers: ledgers, sheets: sheets, now: time.Now}
}

// Statement reads the entry rows of a ledger owned by owner. Ledgers owned by
// someone else, or without a sheet, are reported as ledger.ErrNotFound.
func (s *Service) Statement(ctx context.Context, owner, ledgerID uuid.UUID) (*Statement, error) {
	l, err := s.ledgers.Get(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("getting ledger: %w", err)
	}

	if l.CreatedBy != owner || !l.IsComplete() {
		return nil, ledger.ErrNotFound
	}

	rows, err := s.sheets.ReadRows(ctx, *l.SheetRef, sheet.DataRange)
	if err != nil {
		if errors.Is(err, sheet.ErrNotFound) {
			return nil, fmt.Errorf("sheet for ledger %s: %w", l.ID, ledger.ErrNotFound)
		}

		return nil, fmt.Errorf("reading rows: %w", err)
	}

	st := &Statement{Ledger: l}

	if len(rows) <= sheet.HeaderRows {
		return st, nil
	}

	for _, row := range rows[sheet.HeaderRows:] {
		padded := make([]string, len(sheet.Headers))
		copy(padded, row)

		st.Rows = append(st.Rows, padded)
		st.Debit = st.Debit.Add(amount(padded[sheet.DebitColumn]))
		st.Credit = st.Credit.Add(amount(padded[sheet.CreditColumn]))
	}

	st.Balance = amount(st.Rows[len(st.Rows)-1][sheet.BalanceColumn])

	return st, nil
}

var amountReplacer = strings.NewReplacer(",", "", "₹", "", " ", "")

// amount reads a money cell. Blank and unreadable cells count as zero.
func amount(cell string) decimal.Decimal {
	cell = amountReplacer.Replace(strings.TrimSpace(cell))
	if cell == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cell)
	if err != nil {
		slog.Warn("unreadable amount in statement", "value", cell, "error", err)
		return decimal.Zero
	}

	return d
}

// WriteCSV writes the column headers followed by every entry row.
func (s *Service) WriteCSV(w io.Writer, st *Statement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(sheet.Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if err := cw.WriteAll(st.Rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}

	return nil
}

// Filename names the download after the export date and the ledger title.
func (s *Service) Filename(st *Statement) string {
	safeTitle := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, st.Ledger.Title)

	return fmt.Sprintf("%s_%s.csv", s.now().Format("20060102"), safeTitle)
}

// Summary renders a plain-text digest suitable for pasting into a message.
func (s *Service) Summary(st *Statement) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %d entries\n", st.Ledger.Title, len(st.Rows)))

	for _, row := range st.Rows {
		side := "-" + row[sheet.DebitColumn]
		if row[sheet.DebitColumn] == "" {
			side = "+" + row[sheet.CreditColumn]
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s\n", row[0], row[3], side, row[sheet.BalanceColumn]))
	}

	sb.WriteString(fmt.Sprintf("Debit %s | Credit %s | Balance %s\n",
		st.Debit.StringFixed(2), st.Credit.StringFixed(2), st.Balance.StringFixed(2)))

	return sb.String()
}
