package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tasklists/internal/domain"
)

const issuer = "tasklists"

// JWTIssuer signs and verifies HS256 session tokens. The subject is the
// user ID and the JWT ID is random so individual tokens can be revoked.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewJWTIssuer(secret string, ttl time.Duration, clock clockwork.Clock) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (j *JWTIssuer) Issue(userID uuid.UUID) (string, *domain.Claims, error) {
	now := j.clock.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &domain.Claims{UserID: userID, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (j *JWTIssuer) Parse(token string) (*domain.Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenMalformed) {
			slog.Debug("Token rejected", "error", err)
		}
		return nil, domain.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Claims{UserID: userID, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
