package domain

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxListNameLength = 50

type List struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tasks       []Task    `json:"tasks"`
}

// Slugify lowercases name and replaces every whitespace run with one hyphen.
// Leading and trailing whitespace become hyphens too.
func Slugify(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// ValidListName reports whether name has between 1 and 50 characters.
func ValidListName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= MaxListNameLength
}

type NewList struct {
	UserID      uuid.UUID
	Name        string
	Slug        string
	Description string
}

// ListUpdate carries the optional fields of a list patch. Nil means unchanged.
type ListUpdate struct {
	Name        *string
	Slug        *string
	Description *string
	IsArchived  *bool
}

func (u ListUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.IsArchived == nil
}

type PriorityUpdate struct {
	ID       uuid.UUID `json:"id"`
	Priority int       `json:"priority"`
}

// ListRepository persists lists. Every method is scoped to userID and
// reports ErrListNotFound for lists the user does not own.
type ListRepository interface {
	Create(ctx context.Context, l NewList) (*List, error)
	GetByID(ctx context.Context, userID, listID uuid.UUID) (*List, error)
	GetBySlug(ctx context.Context, userID uuid.UUID, slug string) (*List, error)
	// ListByUser returns the non-archived lists with tasks visible since
	// completedSince, ordered by priority desc then updated_at asc.
	ListByUser(ctx context.Context, userID uuid.UUID, completedSince time.Time) ([]List, error)
	Update(ctx context.Context, userID, listID uuid.UUID, u ListUpdate) (*List, error)
	UpdatePriorities(ctx context.Context, userID uuid.UUID, updates []PriorityUpdate) error
	Delete(ctx context.Context, userID, listID uuid.UUID) error
}
