package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tasklists/internal/domain"
)

// --- Mock implementations ---

type mockUserRepo struct {
	createFn     func(ctx context.Context, u domain.NewUser) (*domain.User, error)
	getByIDFn    func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

type mockListRepo struct {
	createFn           func(ctx context.Context, l domain.NewList) (*domain.List, error)
	getByIDFn          func(ctx context.Context, userID, listID uuid.UUID) (*domain.List, error)
	getBySlugFn        func(ctx context.Context, userID uuid.UUID, slug string) (*domain.List, error)
	listByUserFn       func(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.List, error)
	updateFn           func(ctx context.Context, userID, listID uuid.UUID, u domain.ListUpdate) (*domain.List, error)
	updatePrioritiesFn func(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) error
	deleteFn           func(ctx context.Context, userID, listID uuid.UUID) error
}

func (m *mockListRepo) Create(ctx context.Context, l domain.NewList) (*domain.List, error) {
	if m.createFn != nil {
		return m.createFn(ctx, l)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockListRepo) GetByID(ctx context.Context, userID, listID uuid.UUID) (*domain.List, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID, listID)
	}
	return nil, domain.ErrListNotFound
}

func (m *mockListRepo) GetBySlug(ctx context.Context, userID uuid.UUID, slug string) (*domain.List, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, userID, slug)
	}
	return nil, domain.ErrListNotFound
}

func (m *mockListRepo) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.List, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, since)
	}
	return []domain.List{}, nil
}

func (m *mockListRepo) Update(ctx context.Context, userID, listID uuid.UUID, u domain.ListUpdate) (*domain.List, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, listID, u)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockListRepo) UpdatePriorities(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) error {
	if m.updatePrioritiesFn != nil {
		return m.updatePrioritiesFn(ctx, userID, updates)
	}
	return nil
}

func (m *mockListRepo) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, listID)
	}
	return nil
}

type mockTaskRepo struct {
	createFn     func(ctx context.Context, t domain.NewTask) (*domain.Task, error)
	getByIDFn    func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	listActiveFn func(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.Task, error)
	updateFn     func(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	deleteFn     func(ctx context.Context, userID, taskID uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t domain.NewTask) (*domain.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTaskRepo) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID, taskID)
	}
	return nil, domain.ErrTaskNotFound
}

func (m *mockTaskRepo) ListActive(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.Task, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, userID, since)
	}
	return []domain.Task{}, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, taskID, p)
	}
	return nil, domain.ErrTaskNotFound
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, taskID)
	}
	return nil
}

// fakeHasher "hashes" by prefixing, so tests can assert on stored values.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeTokens struct {
	clock  clockwork.Clock
	issued map[string]domain.Claims
}

func newFakeTokens(clock clockwork.Clock) *fakeTokens {
	return &fakeTokens{clock: clock, issued: map[string]domain.Claims{}}
}

func (f *fakeTokens) Issue(userID uuid.UUID) (string, *domain.Claims, error) {
	c := domain.Claims{UserID: userID, TokenID: uuid.NewString(), ExpiresAt: f.clock.Now().Add(24 * time.Hour)}
	token := "token-" + c.TokenID
	f.issued[token] = c
	return token, &c, nil
}

func (f *fakeTokens) Parse(token string) (*domain.Claims, error) {
	c, ok := f.issued[token]
	if !ok || !c.ExpiresAt.After(f.clock.Now()) {
		return nil, domain.ErrUnauthorized
	}
	return &c, nil
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (d *memDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[tokenID] = until
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}

type mockListCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]domain.List
	invalidated int
	getErr      error
}

func (c *mockListCache) Get(_ context.Context, userID uuid.UUID) ([]domain.List, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	l, ok := c.entries[userID]
	return l, ok, nil
}

func (c *mockListCache) Set(_ context.Context, userID uuid.UUID, lists []domain.List) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[uuid.UUID][]domain.List{}
	}
	c.entries[userID] = lists
	return nil
}

func (c *mockListCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated++
	return nil
}

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestService(users *mockUserRepo, lists *mockListRepo, tasks *mockTaskRepo, opts ...Option) (*Service, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testNow)
	if users == nil {
		users = &mockUserRepo{}
	}
	if lists == nil {
		lists = &mockListRepo{}
	}
	if tasks == nil {
		tasks = &mockTaskRepo{}
	}
	return NewService(users, lists, tasks, fakeHasher{}, newFakeTokens(clock), clock, opts...), clock
}
