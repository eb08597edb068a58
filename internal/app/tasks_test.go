package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tasklists/internal/domain"
)

func ownedLists(owned ...uuid.UUID) *mockListRepo {
	return &mockListRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID, id uuid.UUID) (*domain.List, error) {
			for _, o := range owned {
				if o == id {
					return &domain.List{ID: id}, nil
				}
			}
			return nil, domain.ErrListNotFound
		},
	}
}

func TestCreateTask(t *testing.T) {
	userID, listID := uuid.New(), uuid.New()
	var got domain.NewTask
	tasks := &mockTaskRepo{
		createFn: func(_ context.Context, nt domain.NewTask) (*domain.Task, error) {
			got = nt
			return &domain.Task{ID: uuid.New(), ListID: nt.ListID, Name: nt.Name, Tags: nt.Tags}, nil
		},
	}
	cache := &mockListCache{}
	svc, _ := newTestService(nil, ownedLists(listID), tasks, WithListCache(cache))

	task, err := svc.CreateTask(context.Background(), domain.NewTask{UserID: userID, ListID: listID, Name: "Buy milk", Date: testNow})

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Name)
	assert.NotNil(t, got.Tags)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCreateTask_ListNotOwned(t *testing.T) {
	svc, _ := newTestService(nil, ownedLists(), nil)

	_, err := svc.CreateTask(context.Background(), domain.NewTask{UserID: uuid.New(), ListID: uuid.New(), Name: "x"})

	assert.ErrorIs(t, err, domain.ErrListNotFound)
	assert.Equal(t, "List not found", err.Error())
}

func TestCreateTask_MissingName(t *testing.T) {
	svc, _ := newTestService(nil, nil, nil)

	_, err := svc.CreateTask(context.Background(), domain.NewTask{UserID: uuid.New(), ListID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrInvalidData)
}

func TestListTasks_UsesClockForCutoff(t *testing.T) {
	var since time.Time
	tasks := &mockTaskRepo{
		listActiveFn: func(_ context.Context, _ uuid.UUID, s time.Time) ([]domain.Task, error) {
			since = s
			return []domain.Task{}, nil
		},
	}
	svc, clock := newTestService(nil, nil, tasks)
	clock.Advance(90 * time.Minute)

	_, err := svc.ListTasks(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, testNow.Add(90*time.Minute).Add(-24*time.Hour), since)
}

func TestUpdateTask_MoveRequiresOwnedTarget(t *testing.T) {
	owned := uuid.New()
	tasks := &mockTaskRepo{
		updateFn: func(_ context.Context, _, id uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
			return &domain.Task{ID: id, ListID: *p.ListID}, nil
		},
	}
	svc, _ := newTestService(nil, ownedLists(owned), tasks)

	foreign := uuid.New()
	_, err := svc.UpdateTask(context.Background(), uuid.New(), uuid.New(), domain.TaskPatch{ListID: &foreign})
	assert.ErrorIs(t, err, domain.ErrListNotFound)

	task, err := svc.UpdateTask(context.Background(), uuid.New(), uuid.New(), domain.TaskPatch{ListID: &owned})
	require.NoError(t, err)
	assert.Equal(t, owned, task.ListID)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc, _ := newTestService(nil, nil, &mockTaskRepo{})
	done := true

	_, err := svc.UpdateTask(context.Background(), uuid.New(), uuid.New(), domain.TaskPatch{Completed: &done})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Equal(t, "Task not found", err.Error())
}

func TestDeleteTask(t *testing.T) {
	tasks := &mockTaskRepo{
		deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error { return domain.ErrTaskNotFound },
	}
	svc, _ := newTestService(nil, nil, tasks)

	err := svc.DeleteTask(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
