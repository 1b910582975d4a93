package ledgersync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/saga"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

const (
	stepCheckTitle      = "check-title"
	stepPersistLedger   = "persist-ledger"
	stepInitializeSheet = "initialize-sheet"
	stepAttachSheetRef  = "attach-sheet-ref"
)

type CreateRequest struct {
	Title       string
	Description string
	Owner       uuid.UUID
	OwnerHandle string
}

type CreateResult struct {
	Ledger   *ledger.Ledger
	SheetURL string
}

// CreateLedger persists a ledger and initializes its spreadsheet. Either both
// exist when it returns nil, or neither does.
//
// A duplicate title yields ledger.ErrConflict. A failure after the record was
// written yields a *PartialFailureError.
func (s *Synchronizer) CreateLedger(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	title, err := ledger.ValidateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	var (
		l      *ledger.Ledger
		handle sheet.Handle
	)

	steps := []saga.Step{
		{
			Name: stepCheckTitle,
			Run: func(ctx context.Context) error {
				exists, err := s.ledgers.ExistsByTitle(ctx, title)
				if err != nil {
					return err
				}

				if exists {
					return ledger.ErrConflict
				}

				return nil
			},
		},
		{
			Name: stepPersistLedger,
			Run: func(ctx context.Context) error {
				var err error

				l, err = s.ledgers.Create(ctx, ledger.CreateParams{
					Title:       title,
					Description: req.Description,
					Owner:       req.Owner,
				})

				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.ledgers.Delete(ctx, l.ID)
			},
		},
		{
			Name: stepInitializeSheet,
			Run: func(ctx context.Context) error {
				var err error

				handle, err = s.initializeSheet(ctx, l, req.OwnerHandle)

				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.sheets.DeleteDocument(ctx, handle.ID)
			},
		},
		{
			Name: stepAttachSheetRef,
			Run: func(ctx context.Context) error {
				if err := s.ledgers.AttachSheetRef(ctx, l.ID, handle.ID); err != nil {
					return err
				}

				ref := handle.ID
				l.SheetRef = &ref

				return nil
			},
		},
	}

	if err := saga.Run(ctx, "create-ledger", steps...); err != nil {
		var stepErr *saga.StepError
		if errors.As(err, &stepErr) && (stepErr.Step == stepInitializeSheet || stepErr.Step == stepAttachSheetRef) {
			return nil, &PartialFailureError{
				Title:       title,
				Step:        stepErr.Step,
				Compensated: stepErr.Compensated(),
				Err:         stepErr.Err,
			}
		}

		return nil, err
	}

	slog.Info("ledger created", "ledger_id", l.ID, "title", l.Title, "sheet_id", handle.ID)

	s.publish(ctx, events.TopicLedgerCreated, l.ID.String(), events.LedgerCreated{
		LedgerID:   l.ID,
		Title:      l.Title,
		OwnerID:    l.CreatedBy,
		SheetID:    handle.ID,
		OccurredAt: s.now(),
	})

	url := handle.URL
	if url == "" {
		url = sheetURL(l)
	}

	return &CreateResult{Ledger: l, SheetURL: url}, nil
}

// initializeSheet creates and shares the spreadsheet. A document left behind by
// a failure part way through is removed before returning.
func (s *Synchronizer) initializeSheet(ctx context.Context, l *ledger.Ledger, ownerHandle string) (sheet.Handle, error) {
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	handle, err := s.sheets.CreateDocument(ctx, sheet.Layout{
		Title:     l.Title,
		CreatedBy: ownerHandle,
		CreatedAt: createdAt,
	})
	if err == nil {
		err = s.sheets.SetPermissions(ctx, handle.ID, s.shareRole)
	}

	if err != nil {
		if handle.ID != "" {
			if delErr := s.sheets.DeleteDocument(context.WithoutCancel(ctx), handle.ID); delErr != nil {
				slog.Error("removing half-initialized spreadsheet", "sheet_id", handle.ID, "error", delErr)
			}
		}

		return sheet.Handle{}, err
	}

	return handle, nil
}
