package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("ledger not found")
	ErrConflict   = errors.New("ledger title already in use")
	ErrValidation = errors.New("invalid ledger")
)

// Ledger is a named book of entries owned by a user. It is complete once the
// external sheet backing it has been attached.
type Ledger struct {
	ID          uuid.UUID
	Title       string
	Description string
	CreatedBy   uuid.UUID
	SheetRef    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l *Ledger) IsComplete() bool {
	return l.SheetRef != nil && *l.SheetRef != ""
}
