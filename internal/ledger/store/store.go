package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, title, description, created_by, sheet_ref, created_at, updated_at
func scanLedger(s scanner) (*ledger.Ledger, error) {
	var l ledger.Ledger

	var sheetRef sql.NullString

	if err := s.Scan(
		&l.ID, &l.Title, &l.Description, &l.CreatedBy, &sheetRef, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if sheetRef.Valid {
		l.SheetRef = &sheetRef.String
	}

	return &l, nil
}

const selectLedgerColumns = `id, title, description, created_by, sheet_ref, created_at, updated_at`

func (s *Store) CreateLedger(ctx context.Context, l *ledger.Ledger) error {
	query := `
		INSERT INTO ledgers (title, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		l.Title,
		l.Description,
		l.CreatedBy,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrConflict
		}

		return fmt.Errorf("creating ledger: %w", err)
	}

	return nil
}

func (s *Store) GetLedger(ctx context.Context, id uuid.UUID) (*ledger.Ledger, error) {
	query := `SELECT ` + selectLedgerColumns + ` FROM ledgers WHERE id = $1`

	l, err := scanLedger(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting ledger: %w", err)
	}

	return l, nil
}

func (s *Store) GetLedgerByTitle(ctx context.Context, title string) (*ledger.Ledger, error) {
	query := `SELECT ` + selectLedgerColumns + ` FROM ledgers WHERE title = $1`

	l, err := scanLedger(s.db.QueryRowContext(ctx, query, title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting ledger by title: %w", err)
	}

	return l, nil
}

func (s *Store) ListLedgersByOwner(ctx context.Context, owner uuid.UUID) ([]*ledger.Ledger, error) {
	query := `SELECT ` + selectLedgerColumns + `
		FROM ledgers
		WHERE created_by = $1 AND sheet_ref IS NOT NULL
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("listing ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*ledger.Ledger

	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger: %w", err)
		}

		ledgers = append(ledgers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return ledgers, nil
}

func (s *Store) AttachSheetRef(ctx context.Context, id uuid.UUID, ref string) error {
	query := `
		UPDATE ledgers
		SET sheet_ref = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, ref, id)
	if err != nil {
		return fmt.Errorf("attaching sheet ref: %w", err)
	}

	return expectAffected(res)
}

func (s *Store) DeleteLedger(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ledger: %w", err)
	}

	return expectAffected(res)
}

func (s *Store) DeleteIncomplete(ctx context.Context, createdBefore time.Time) (int64, error) {
	query := `
		DELETE FROM ledgers
		WHERE sheet_ref IS NULL AND created_at < $1
	`

	res, err := s.db.ExecContext(ctx, query, createdBefore)
	if err != nil {
		return 0, fmt.Errorf("deleting incomplete ledgers: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return n, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
