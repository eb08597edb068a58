package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pscheid92/tasklists/internal/domain"
)

func (s *Service) CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.lists.GetByID(ctx, task.UserID, task.ListID); err != nil {
		return nil, err
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.invalidateOverview(ctx, task.UserID)
	return created, nil
}

// ListTasks returns the user's active tasks: every incomplete task plus those
// completed within the last 24 hours.
func (s *Service) ListTasks(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := s.tasks.ListActive(ctx, userID, domain.VisibleSince(s.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a partial update. Moving a task requires owning the
// target list.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.ListID != nil {
		if _, err := s.lists.GetByID(ctx, userID, *patch.ListID); err != nil {
			return nil, err
		}
	}

	task, err := s.tasks.Update(ctx, userID, taskID, patch)
	if err != nil {
		return nil, err
	}

	s.invalidateOverview(ctx, userID)
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	s.invalidateOverview(ctx, userID)
	return nil
}
