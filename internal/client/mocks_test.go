package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tasklists/internal/domain"
)

var errNotImplemented = errors.New("not implemented")

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type mockAPI struct {
	registerFn         func(ctx context.Context, req RegisterRequest) (*Token, error)
	loginFn            func(ctx context.Context, email, password string) (*Token, error)
	logoutFn           func(ctx context.Context) error
	meFn               func(ctx context.Context) (*User, error)
	fetchListsFn       func(ctx context.Context) ([]domain.List, error)
	createListFn       func(ctx context.Context, name, description string) (*domain.List, error)
	updateListFn       func(ctx context.Context, id uuid.UUID, patch ListPatch) (*domain.List, error)
	updatePrioritiesFn func(ctx context.Context, updates []domain.PriorityUpdate) ([]domain.List, error)
	deleteListFn       func(ctx context.Context, id uuid.UUID) error
	fetchTasksFn       func(ctx context.Context) ([]domain.Task, error)
	createTaskFn       func(ctx context.Context, task NewTask) (*domain.Task, error)
	updateTaskFn       func(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error)
	deleteTaskFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAPI) Register(ctx context.Context, req RegisterRequest) (*Token, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*Token, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockAPI) Me(ctx context.Context) (*User, error) {
	if m.meFn != nil {
		return m.meFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) FetchLists(ctx context.Context) ([]domain.List, error) {
	if m.fetchListsFn != nil {
		return m.fetchListsFn(ctx)
	}
	return []domain.List{}, nil
}

func (m *mockAPI) CreateList(ctx context.Context, name, description string) (*domain.List, error) {
	if m.createListFn != nil {
		return m.createListFn(ctx, name, description)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) UpdateList(ctx context.Context, id uuid.UUID, patch ListPatch) (*domain.List, error) {
	if m.updateListFn != nil {
		return m.updateListFn(ctx, id, patch)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) UpdatePriorities(ctx context.Context, updates []domain.PriorityUpdate) ([]domain.List, error) {
	if m.updatePrioritiesFn != nil {
		return m.updatePrioritiesFn(ctx, updates)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) DeleteList(ctx context.Context, id uuid.UUID) error {
	if m.deleteListFn != nil {
		return m.deleteListFn(ctx, id)
	}
	return nil
}

func (m *mockAPI) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	if m.fetchTasksFn != nil {
		return m.fetchTasksFn(ctx)
	}
	return []domain.Task{}, nil
}

func (m *mockAPI) CreateTask(ctx context.Context, task NewTask) (*domain.Task, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, task)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, id, patch)
	}
	return nil, errNotImplemented
}

func (m *mockAPI) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, id)
	}
	return nil
}

// newTestStore returns a store seeded with lists and tasks. Tasks are also
// attached to their lists, as the overview endpoint returns them.
func newTestStore(t *testing.T, api API, lists []domain.List, tasks []domain.Task) *Store {
	t.Helper()
	s := NewStore(api, clockwork.NewFakeClockAt(testNow))
	for _, l := range lists {
		l.Tasks = []domain.Task{}
		for _, task := range tasks {
			if task.ListID == l.ID {
				l.Tasks = append(l.Tasks, task)
			}
		}
		s.lists = append(s.lists, l)
	}
	s.tasks = append(s.tasks, tasks...)
	return s
}

func testList(name string, priority int, updatedAt time.Time) domain.List {
	return domain.List{
		ID:        uuid.New(),
		Name:      name,
		Slug:      domain.Slugify(name),
		Priority:  priority,
		Tasks:     []domain.Task{},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func testTask(name string, listID uuid.UUID) domain.Task {
	return domain.Task{
		ID:        uuid.New(),
		ListID:    listID,
		Name:      name,
		Date:      testNow,
		Tags:      []string{},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}
