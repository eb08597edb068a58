package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrInvalidCredentials on mismatch.
	Compare(hash, password string) error
}

type Claims struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, *Claims, error)
	// Parse verifies signature, algorithm and expiry. Any failure is ErrUnauthorized.
	Parse(token string) (*Claims, error)
}

// TokenDenylist records logged-out token IDs until they would expire anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Session is the result of a successful register or login.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
}
