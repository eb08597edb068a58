package domain

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Surname      string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns a copy without the password hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	Surname      string
}

type RegisterRequest struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Validate requires every field and a parseable bare address.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Surname) == "" || r.Password == "" {
		return ErrInvalidData
	}
	if len(r.Password) > MaxPasswordBytes {
		return ErrInvalidData
	}
	if !ValidEmail(r.Email) {
		return ErrInvalidData
	}
	return nil
}

func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// NormalizeEmail lowercases and trims an address before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserRepository interface {
	Create(ctx context.Context, u NewUser) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
