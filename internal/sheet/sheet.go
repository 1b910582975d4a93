// Package sheet describes the spreadsheet a ledger is mirrored to.
package sheet

//go:generate mockgen -source=sheet.go -destination=store_mock.go -package=sheet

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	TabName = "Ledger"
	// HeaderRows is the number of rows above the first entry: title, creation info, a spacer and the column headers.
	HeaderRows = 4
	// DataRange covers every ledger column of the tab.
	DataRange = TabName + "!A:H"

	VoucherNameColumn   = 1
	VoucherNumberColumn = 2
	DescriptionColumn   = 3
	DebitColumn         = 4
	CreditColumn        = 5
	BalanceColumn       = 6
	PartyColumn         = 7
)

// IsTextColumn reports whether column i holds free text that must be stored
// verbatim rather than parsed as a number, date or formula.
func IsTextColumn(i int) bool {
	switch i {
	case VoucherNameColumn, VoucherNumberColumn, DescriptionColumn, PartyColumn:
		return true
	default:
		return false
	}
}

var ErrNotFound = errors.New("spreadsheet not found")

var Headers = []string{
	"Date",
	"VCh Name",
	"VCh Number",
	"Description",
	"Debit",
	"Credit",
	"Balance",
	"Party Name / Remarks",
}

var ColumnWidths = []int64{150, 200, 200, 350, 250, 250, 250, 250}

// Layout is what a freshly created ledger spreadsheet is initialized with.
type Layout struct {
	Title     string
	CreatedBy string
	CreatedAt time.Time
}

func (l Layout) DocumentTitle() string {
	return l.Title + " - Ledger"
}

func (l Layout) CreationInfo() string {
	return fmt.Sprintf("Created by: %s | Created on: %s", l.CreatedBy, l.CreatedAt.Format("02-01-2006 15:04"))
}

// Handle identifies a created spreadsheet.
type Handle struct {
	ID  string
	URL string
}

func URL(id string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", id)
}

// Store is an external spreadsheet service. Rows are exchanged as plain cell strings.
type Store interface {
	CreateDocument(ctx context.Context, layout Layout) (Handle, error)
	SetPermissions(ctx context.Context, id, role string) error
	ReadRows(ctx context.Context, id, rng string) ([][]string, error)
	AppendRow(ctx context.Context, id, rng string, row []string) error
	DeleteDocument(ctx context.Context, id string) error
}
