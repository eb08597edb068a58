// Package client talks to the tasklists REST API and keeps an in-memory
// copy of the caller's lists and tasks. Store mutations are applied locally
// before the request is sent and rolled back when it fails.
package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/tasklists/internal/domain"
)

// API is the subset of the REST surface the store and CLI use.
type API interface {
	Register(ctx context.Context, req RegisterRequest) (*Token, error)
	Login(ctx context.Context, email, password string) (*Token, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*User, error)

	FetchLists(ctx context.Context) ([]domain.List, error)
	CreateList(ctx context.Context, name, description string) (*domain.List, error)
	UpdateList(ctx context.Context, id uuid.UUID, patch ListPatch) (*domain.List, error)
	UpdatePriorities(ctx context.Context, updates []domain.PriorityUpdate) ([]domain.List, error)
	DeleteList(ctx context.Context, id uuid.UUID) error

	FetchTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, task NewTask) (*domain.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListPatch is the body of PATCH /lists/:id. Nil fields are left unchanged.
type ListPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Archived    *bool   `json:"archived,omitempty"`
}

type NewTask struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	ListID      uuid.UUID `json:"listId"`
	Tags        []string  `json:"tags,omitempty"`
}

// TaskPatch is the body of PATCH /tasks/:id. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	ListID      *uuid.UUID `json:"listId,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// apply copies the set fields onto t.
func (p TaskPatch) apply(t *domain.Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.ListID != nil {
		t.ListID = *p.ListID
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
