package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var ErrNotFound = errors.New("user not found")

// User is an account known to the bot, addressed by its chat handle.
type User struct {
	ID        uuid.UUID
	Handle    string
	CreatedAt time.Time
}

//go:generate mockgen -source=identity.go -destination=repository_mock.go -package=identity
type Repository interface {
	GetUserByHandle(ctx context.Context, handle string) (*User, error)
}

// Service resolves chat handles to users. Hits are cached; misses are not, so a
// user registered by an admin can start using the bot immediately.
type Service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *Service) Resolve(ctx context.Context, handle string) (*User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, ErrNotFound
	}

	if cached, found := s.cache.Get(handle); found {
		return cached.(*User), nil
	}

	u, err := s.repo.GetUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("resolving user %q: %w", handle, err)
	}

	s.cache.SetDefault(handle, u)

	return u, nil
}
