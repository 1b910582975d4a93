package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const MaxTitleLength = 100

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateLedger(ctx context.Context, l *Ledger) error
	GetLedger(ctx context.Context, id uuid.UUID) (*Ledger, error)
	GetLedgerByTitle(ctx context.Context, title string) (*Ledger, error)
	ListLedgersByOwner(ctx context.Context, owner uuid.UUID) ([]*Ledger, error)
	AttachSheetRef(ctx context.Context, id uuid.UUID, ref string) error
	DeleteLedger(ctx context.Context, id uuid.UUID) error
	DeleteIncomplete(ctx context.Context, createdBefore time.Time) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title       string
	Description string
	Owner       uuid.UUID
}

// NormalizeTitle trims surrounding whitespace and puts the title in NFC form so
// visually identical titles collide on the uniqueness check.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}

// ValidateTitle returns the normalized title or an ErrValidation.
func ValidateTitle(title string) (string, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", fmt.Errorf("%w: title is longer than %d characters", ErrValidation, MaxTitleLength)
	}

	return title, nil
}

// Create persists a ledger without a sheet reference. A title already in use
// yields ErrConflict, whether detected up front or by the repository.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Ledger, error) {
	title, err := ValidateTitle(params.Title)
	if err != nil {
		return nil, err
	}

	if params.Owner == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}

	exists, err := s.ExistsByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, ErrConflict
	}

	l := &Ledger{
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		CreatedBy:   params.Owner,
	}
	if err := s.repo.CreateLedger(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	_, err := s.repo.GetLedgerByTitle(ctx, NormalizeTitle(title))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return false, fmt.Errorf("checking title: %w", err)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Ledger, error) {
	return s.repo.GetLedger(ctx, id)
}

// FindByOwner lists the owner's complete ledgers, newest first.
func (s *Service) FindByOwner(ctx context.Context, owner uuid.UUID) ([]*Ledger, error) {
	return s.repo.ListLedgersByOwner(ctx, owner)
}

func (s *Service) AttachSheetRef(ctx context.Context, id uuid.UUID, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: sheet reference is required", ErrValidation)
	}

	return s.repo.AttachSheetRef(ctx, id, ref)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteLedger(ctx, id)
}

// PurgeIncomplete removes ledgers that never received a sheet reference and are
// older than the grace period. It backs up saga compensation that failed.
func (s *Service) PurgeIncomplete(ctx context.Context, grace time.Duration) (int64, error) {
	n, err := s.repo.DeleteIncomplete(ctx, time.Now().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("purging incomplete ledgers: %w", err)
	}

	return n, nil
}
