package entry

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ConfidenceThreshold is the minimum classifier confidence for an entry to be
// offered to the user for confirmation.
const ConfidenceThreshold = 0.6

// DateLayout is the day-month-year form entries are normalized to.
const DateLayout = "02-01-2006"

var (
	ErrEmptyText          = errors.New("entry text is empty")
	ErrMalformedResponse  = errors.New("classifier returned a malformed response")
	ErrServiceUnavailable = errors.New("classifier unavailable")
	ErrLowConfidence      = errors.New("entry not understood with enough confidence")
)

// ParsedEntry is a structured accounting entry extracted from free text.
// Once accepted, exactly one of Debit and Credit is non-zero.
type ParsedEntry struct {
	IsValid       bool
	Date          time.Time
	VoucherName   string
	VoucherNumber string
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	PartyName     string
	Confidence    float64
	Reasoning     string
}

func (e *ParsedEntry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// Amount is the non-zero side of the entry.
func (e *ParsedEntry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}

	return e.Credit
}

func (e *ParsedEntry) FormattedDate() string {
	return e.Date.Format(DateLayout)
}

// LowConfidenceError reports a structurally valid classification that did not
// pass the confidence gate. The caller re-prompts the user.
type LowConfidenceError struct {
	Entry  *ParsedEntry
	Reason string
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("low confidence entry (%.2f): %s", e.Entry.Confidence, e.Reason)
}

func (e *LowConfidenceError) Is(target error) bool {
	return target == ErrLowConfidence
}
