package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/identity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUserByHandle(ctx context.Context, handle string) (*identity.User, error) {
	query := `SELECT id, handle, created_at FROM users WHERE handle = $1`

	var u identity.User

	err := s.db.QueryRowContext(ctx, query, handle).Scan(&u.ID, &u.Handle, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &u, nil
}
