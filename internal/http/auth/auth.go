// Package auth guards API routes with HS256 bearer tokens whose subject is the
// user's chat handle.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/tally/internal/identity"
)

type Users interface {
	Resolve(ctx context.Context, handle string) (*identity.User, error)
}

type contextKey struct{}

var ErrNoSecret = errors.New("no signing secret configured")

// Issuer signs short-lived tokens with a fixed secret and lifetime.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// IssueToken signs a token for handle and reports when it expires.
func (i *Issuer) IssueToken(handle string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)

	token, err := sign(i.secret, handle, now, expires)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expires, nil
}

// Issue signs a token for handle valid for ttl.
func Issue(secret []byte, handle string, ttl time.Duration) (string, error) {
	now := time.Now()

	return sign(secret, handle, now, now.Add(ttl))
}

func sign(secret []byte, handle string, now, expires time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}

	claims := jwt.RegisteredClaims{
		Subject:   handle,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func subject(secret []byte, raw string) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}

	if sub == "" {
		return "", errors.New("token has no subject")
	}

	return sub, nil
}

// Middleware rejects requests without a valid bearer token for a known user and
// stores the user in the request context.
func Middleware(secret []byte, users Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			handle, err := subject(secret, raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.Resolve(r.Context(), handle)
			if err != nil {
				if errors.Is(err, identity.ErrNotFound) {
					http.Error(w, "unknown user", http.StatusUnauthorized)
					return
				}

				slog.Error("resolving token subject", "handle", handle, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, user)))
		})
	}
}

func UserFrom(ctx context.Context) (*identity.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*identity.User)
	return u, ok
}
