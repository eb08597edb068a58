package cli

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/tasklists/internal/client"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/ranking"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory server for one user.
type fakeAPI struct {
	mu sync.Mutex

	user  client.User
	lists []domain.List
	tasks []domain.Task

	baseURL   string
	token     string
	loggedOut bool
	priority  []domain.PriorityUpdate

	// err, when set, is returned by every mutating call.
	err error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user: client.User{ID: uuid.New(), Email: "ada@example.com", Name: "Ada", Surname: "Lovelace"},
	}
}

func (f *fakeAPI) addList(name string, priority int) domain.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := domain.List{
		ID:        uuid.New(),
		UserID:    f.user.ID,
		Name:      name,
		Slug:      domain.Slugify(name),
		Priority:  priority,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	f.lists = append(f.lists, l)
	return l
}

func (f *fakeAPI) addTask(listID uuid.UUID, name string, completed bool, updatedAt time.Time) domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := domain.Task{
		ID:        uuid.New(),
		UserID:    f.user.ID,
		ListID:    listID,
		Name:      name,
		Date:      testNow,
		Completed: completed,
		Tags:      []string{},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	f.tasks = append(f.tasks, t)
	return t
}

func (f *fakeAPI) Register(_ context.Context, req client.RegisterRequest) (*client.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.user.Email = req.Email
	f.user.Name = req.Name
	f.user.Surname = req.Surname
	return &client.Token{Token: "registered-token", ExpiresAt: testNow.Add(24 * time.Hour)}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*client.Token, error) {
	if email != f.user.Email || password != "secret" {
		return nil, &client.APIError{Status: 401, Message: "Invalid credentials"}
	}
	return &client.Token{Token: "login-token", ExpiresAt: testNow.Add(24 * time.Hour)}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.loggedOut = true
	return f.err
}

func (f *fakeAPI) Me(context.Context) (*client.User, error) {
	u := f.user
	return &u, nil
}

func (f *fakeAPI) FetchLists(context.Context) ([]domain.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overview(), nil
}

// overview returns the non-archived lists with their visible tasks.
func (f *fakeAPI) overview() []domain.List {
	var out []domain.List
	for _, l := range f.lists {
		if l.IsArchived {
			continue
		}
		l.Tasks = []domain.Task{}
		for _, t := range f.tasks {
			if t.ListID == l.ID && t.Visible(testNow) {
				l.Tasks = append(l.Tasks, t)
			}
		}
		out = append(out, l)
	}
	ranking.Sort(out)
	return out
}

func (f *fakeAPI) CreateList(_ context.Context, name, description string) (*domain.List, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.addList(name, 0)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[len(f.lists)-1].Description = description
	l := f.lists[len(f.lists)-1]
	return &l, nil
}

func (f *fakeAPI) UpdateList(_ context.Context, id uuid.UUID, patch client.ListPatch) (*domain.List, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.lists, func(l domain.List) bool { return l.ID == id })
	if i < 0 {
		return nil, &client.APIError{Status: 404, Message: "List not found"}
	}
	if patch.Name != nil {
		f.lists[i].Name = *patch.Name
		f.lists[i].Slug = domain.Slugify(*patch.Name)
	}
	if patch.Description != nil {
		f.lists[i].Description = *patch.Description
	}
	if patch.Archived != nil {
		f.lists[i].IsArchived = *patch.Archived
	}
	l := f.lists[i]
	return &l, nil
}

func (f *fakeAPI) UpdatePriorities(_ context.Context, updates []domain.PriorityUpdate) ([]domain.List, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priority = updates
	for _, u := range updates {
		for i := range f.lists {
			if f.lists[i].ID == u.ID {
				f.lists[i].Priority = u.Priority
			}
		}
	}
	return f.overview(), nil
}

func (f *fakeAPI) DeleteList(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = slices.DeleteFunc(f.lists, func(l domain.List) bool { return l.ID == id })
	f.tasks = slices.DeleteFunc(f.tasks, func(t domain.Task) bool { return t.ListID == id })
	return nil
}

func (f *fakeAPI) FetchTasks(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Task
	for _, t := range f.tasks {
		if t.Visible(testNow) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, task client.NewTask) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := f.addTask(task.ListID, task.Name, false, testNow)
	f.mu.Lock()
	defer f.mu.Unlock()
	last := &f.tasks[len(f.tasks)-1]
	last.Date = task.Date
	last.Description = task.Description
	if task.Tags != nil {
		last.Tags = task.Tags
	}
	t = *last
	return &t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id uuid.UUID, patch client.TaskPatch) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.tasks, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return nil, &client.APIError{Status: 404, Message: "Task not found"}
	}
	if patch.Completed != nil {
		f.tasks[i].Completed = *patch.Completed
	}
	f.tasks[i].UpdatedAt = testNow
	t := f.tasks[i]
	return &t, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.DeleteFunc(f.tasks, func(t domain.Task) bool { return t.ID == id })
	return nil
}
