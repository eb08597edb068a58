package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/ranking"
)

// ErrIndexOutOfRange is returned by ChangeListPriority for positions
// outside the current list slice.
var ErrIndexOutOfRange = errors.New("list index out of range")

// Store is the client-side view of the caller's lists and tasks.
//
// Mutations apply locally first, then call the API without holding the
// lock, then either adopt the server's record or roll back. Records are
// matched by ID after the call so concurrent mutations on other records
// are not clobbered.
type Store struct {
	api   API
	clock clockwork.Clock

	mu    sync.RWMutex
	lists []domain.List
	tasks []domain.Task
	err   string
}

func NewStore(api API, clock clockwork.Clock) *Store {
	return &Store{
		api:   api,
		clock: clock,
		lists: []domain.List{},
		tasks: []domain.Task{},
	}
}

// Lists returns a copy of the lists in display order.
func (s *Store) Lists() []domain.List {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.List, len(s.lists))
	for i, l := range s.lists {
		l.Tasks = slices.Clone(l.Tasks)
		out[i] = l
	}
	return out
}

func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Err is the message of the last failed operation, or "" after a success.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) TasksByList(listID uuid.UUID) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Task
	for _, t := range s.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	return out
}

// fail records err as the store error. Callers hold the lock.
func (s *Store) fail(err error) error {
	s.err = ErrorMessage(err)
	return err
}

func (s *Store) listIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.lists, func(l domain.List) bool { return l.ID == id })
}

func (s *Store) taskIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

func (s *Store) FetchLists(ctx context.Context) error {
	lists, err := s.api.FetchLists(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}
	for i := range lists {
		if lists[i].Tasks == nil {
			lists[i].Tasks = []domain.Task{}
		}
	}
	ranking.Sort(lists)
	s.lists = lists
	s.err = ""
	return nil
}

// AddList inserts a placeholder list under a temporary ID and swaps in the
// server's record once it is created.
func (s *Store) AddList(ctx context.Context, name, description string) (*domain.List, error) {
	now := s.clock.Now()
	temp := domain.List{
		ID:          uuid.New(),
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: description,
		Tasks:       []domain.Task{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.lists = append(s.lists, temp)
	s.mu.Unlock()

	saved, err := s.api.CreateList(ctx, name, description)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.listIndex(temp.ID)
	if err != nil {
		if i >= 0 {
			s.lists = slices.Delete(s.lists, i, i+1)
		}
		return nil, s.fail(err)
	}

	if saved.Tasks == nil {
		saved.Tasks = []domain.Task{}
	}
	if i >= 0 {
		s.lists[i] = *saved
	} else {
		s.lists = append(s.lists, *saved)
	}
	s.err = ""
	return saved, nil
}

// ChangeListPriority moves the list at oldIndex to newIndex, renumbers
// priorities and persists them in one batch. On failure every list gets its
// previous priority back and the previous order is restored.
func (s *Store) ChangeListPriority(ctx context.Context, oldIndex, newIndex int) error {
	s.mu.Lock()
	if oldIndex < 0 || oldIndex >= len(s.lists) || newIndex < 0 || newIndex >= len(s.lists) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	snapshot := ranking.Snapshot(s.lists)
	s.lists = ranking.Reorder(s.lists, oldIndex, newIndex)
	updates := ranking.Priorities(s.lists)
	s.mu.Unlock()

	lists, err := s.api.UpdatePriorities(ctx, updates)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		ranking.Restore(s.lists, snapshot)
		ranking.Sort(s.lists)
		return s.fail(err)
	}

	// Keep the local tasks when the response omits them.
	for i := range lists {
		if lists[i].Tasks != nil {
			continue
		}
		lists[i].Tasks = []domain.Task{}
		if j := s.listIndex(lists[i].ID); j >= 0 {
			lists[i].Tasks = s.lists[j].Tasks
		}
	}
	ranking.Sort(lists)
	s.lists = lists
	s.err = ""
	return nil
}

// UpdateList renames a list or changes its description. Unchanged input is
// a no-op and an empty name keeps the current one.
func (s *Store) UpdateList(ctx context.Context, id uuid.UUID, name, description string) error {
	s.mu.Lock()
	i := s.listIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrListNotFound
	}
	previous := s.lists[i]
	if name == "" {
		name = previous.Name
	}
	if name == previous.Name && description == previous.Description {
		s.mu.Unlock()
		return nil
	}
	s.lists[i].Name = name
	s.lists[i].Slug = domain.Slugify(name)
	s.lists[i].Description = description
	s.mu.Unlock()

	saved, err := s.api.UpdateList(ctx, id, ListPatch{Name: &name, Description: &description})

	s.mu.Lock()
	defer s.mu.Unlock()

	i = s.listIndex(id)
	if err != nil {
		if i >= 0 {
			s.lists[i].Name = previous.Name
			s.lists[i].Slug = previous.Slug
			s.lists[i].Description = previous.Description
		}
		return s.fail(err)
	}

	if i >= 0 {
		saved.Tasks = s.lists[i].Tasks
		s.lists[i] = *saved
	}
	s.err = ""
	return nil
}

// ArchiveList hides a list. Archived lists are not part of the overview, so
// it is removed locally and put back if the server refuses.
func (s *Store) ArchiveList(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.listIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrListNotFound
	}
	previous := s.lists[i]
	s.lists = slices.Delete(s.lists, i, i+1)
	s.mu.Unlock()

	archived := true
	_, err := s.api.UpdateList(ctx, id, ListPatch{Archived: &archived})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lists = append(s.lists, previous)
		ranking.Sort(s.lists)
		return s.fail(err)
	}
	s.err = ""
	return nil
}

// RemoveList deletes a list and, locally, its tasks. Both come back if the
// delete fails.
func (s *Store) RemoveList(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.listIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrListNotFound
	}
	previous := s.lists[i]
	var orphaned []domain.Task
	s.tasks = slices.DeleteFunc(s.tasks, func(t domain.Task) bool {
		if t.ListID == id {
			orphaned = append(orphaned, t)
			return true
		}
		return false
	})
	s.lists = slices.Delete(s.lists, i, i+1)
	s.mu.Unlock()

	err := s.api.DeleteList(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lists = append(s.lists, previous)
		ranking.Sort(s.lists)
		s.tasks = append(s.tasks, orphaned...)
		return s.fail(err)
	}
	s.err = ""
	return nil
}

func (s *Store) FetchTasks(ctx context.Context) error {
	tasks, err := s.api.FetchTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}
	s.tasks = tasks
	s.err = ""
	return nil
}

// AddTask adds a placeholder task to the task slice and to its list, then
// replaces it with the created task. A failed create removes it from both.
func (s *Store) AddTask(ctx context.Context, task NewTask) (*domain.Task, error) {
	now := s.clock.Now()
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	temp := domain.Task{
		ID:          uuid.New(),
		ListID:      task.ListID,
		Name:        task.Name,
		Description: task.Description,
		Date:        task.Date,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, temp)
	if i := s.listIndex(task.ListID); i >= 0 {
		s.lists[i].Tasks = append(s.lists[i].Tasks, temp)
	}
	s.mu.Unlock()

	saved, err := s.api.CreateTask(ctx, task)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.dropTask(temp.ID)
		return nil, s.fail(err)
	}
	s.replaceTask(temp.ID, *saved)
	s.err = ""
	return saved, nil
}

// MarkTaskCompleted toggles completion. On failure the task gets the value
// it had before the call, whatever completed was.
func (s *Store) MarkTaskCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	previous := s.tasks[i].Completed
	s.patchTask(id, TaskPatch{Completed: &completed})
	s.mu.Unlock()

	saved, err := s.api.UpdateTask(ctx, id, TaskPatch{Completed: &completed})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.patchTask(id, TaskPatch{Completed: &previous})
		return s.fail(err)
	}
	s.replaceTask(id, *saved)
	s.err = ""
	return nil
}

// UpdateTask edits a task locally without calling the API.
func (s *Store) UpdateTask(id uuid.UUID, patch TaskPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taskIndex(id) < 0 {
		return false
	}
	s.patchTask(id, patch)
	return true
}

// RemoveTask deletes a task. On failure it is restored to the task slice and
// to its own list only.
func (s *Store) RemoveTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	previous := s.tasks[i]
	s.dropTask(id)
	s.mu.Unlock()

	err := s.api.DeleteTask(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.tasks = append(s.tasks, previous)
		if li := s.listIndex(previous.ListID); li >= 0 {
			s.lists[li].Tasks = append(s.lists[li].Tasks, previous)
		}
		return s.fail(err)
	}
	s.err = ""
	return nil
}

// dropTask removes id from the task slice and every list. Callers hold the lock.
func (s *Store) dropTask(id uuid.UUID) {
	match := func(t domain.Task) bool { return t.ID == id }
	s.tasks = slices.DeleteFunc(s.tasks, match)
	for i := range s.lists {
		s.lists[i].Tasks = slices.DeleteFunc(s.lists[i].Tasks, match)
	}
}

// replaceTask swaps the record with id for task wherever it appears. If the
// server moved the task to another list it is dropped from the old one.
func (s *Store) replaceTask(id uuid.UUID, task domain.Task) {
	if i := s.taskIndex(id); i >= 0 {
		s.tasks[i] = task
	}
	for li := range s.lists {
		j := slices.IndexFunc(s.lists[li].Tasks, func(t domain.Task) bool { return t.ID == id })
		if j < 0 {
			continue
		}
		if s.lists[li].ID == task.ListID {
			s.lists[li].Tasks[j] = task
		} else {
			s.lists[li].Tasks = slices.Delete(s.lists[li].Tasks, j, j+1)
		}
	}
}

func (s *Store) patchTask(id uuid.UUID, patch TaskPatch) {
	if i := s.taskIndex(id); i >= 0 {
		patch.apply(&s.tasks[i])
	}
	for li := range s.lists {
		for j := range s.lists[li].Tasks {
			if s.lists[li].Tasks[j].ID == id {
				patch.apply(&s.lists[li].Tasks[j])
			}
		}
	}
}
