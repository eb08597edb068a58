package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompletedVisibility is how long a completed task stays in listings.
const CompletedVisibility = 24 * time.Hour

type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	ListID      uuid.UUID `json:"listId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Completed   bool      `json:"completed"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Visible reports whether the task is still listed at now.
func (t Task) Visible(now time.Time) bool {
	return !t.Completed || !t.UpdatedAt.Before(VisibleSince(now))
}

// VisibleSince is the oldest updated_at a completed task may carry and
// still be listed.
func VisibleSince(now time.Time) time.Time {
	return now.Add(-CompletedVisibility)
}

type NewTask struct {
	UserID      uuid.UUID
	ListID      uuid.UUID
	Name        string
	Description string
	Date        time.Time
	Tags        []string
}

func (t NewTask) Validate() error {
	if strings.TrimSpace(t.Name) == "" || t.ListID == uuid.Nil {
		return ErrInvalidData
	}
	return nil
}

// TaskPatch carries the optional fields of a task update. Nil means unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	Date        *time.Time
	ListID      *uuid.UUID
	Tags        *[]string
	Completed   *bool
}

func (p TaskPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidData
	}
	if p.ListID != nil && *p.ListID == uuid.Nil {
		return ErrInvalidData
	}
	return nil
}

// TaskRepository persists tasks. Every method is scoped to userID and
// reports ErrTaskNotFound for tasks the user does not own.
type TaskRepository interface {
	Create(ctx context.Context, t NewTask) (*Task, error)
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*Task, error)
	// ListActive returns incomplete tasks plus those completed at or after
	// completedSince.
	ListActive(ctx context.Context, userID uuid.UUID, completedSince time.Time) ([]Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, p TaskPatch) (*Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}
