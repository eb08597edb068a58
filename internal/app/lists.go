package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/ranking"
)

func validateListName(name string) error {
	if strings.TrimSpace(name) == "" || !domain.ValidListName(name) {
		return domain.ErrInvalidData
	}
	return nil
}

func (s *Service) CreateList(ctx context.Context, userID uuid.UUID, name, description string) (*domain.List, error) {
	if err := validateListName(name); err != nil {
		return nil, err
	}

	list, err := s.lists.Create(ctx, domain.NewList{
		UserID:      userID,
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	list.Tasks = []domain.Task{}

	s.invalidateOverview(ctx, userID)
	return list, nil
}

// ListLists returns the user's non-archived lists with their visible tasks,
// highest priority first. Results are served from the list cache when one
// is configured; concurrent misses for the same user share one query.
func (s *Service) ListLists(ctx context.Context, userID uuid.UUID) ([]domain.List, error) {
	if s.cache != nil {
		lists, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "List cache read failed", "user_id", userID.String(), "error", err)
		} else if ok {
			return lists, nil
		}
	}

	// The flight is shared, so one caller going away must not cancel it.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.overviewGroup.Do(userID.String(), func() (any, error) {
		var gen uint64
		if s.cache != nil {
			gen = s.generation(userID).Load()
		}

		lists, err := s.lists.ListByUser(fillCtx, userID, domain.VisibleSince(s.clock.Now()))
		if err != nil {
			return nil, err
		}
		ranking.Sort(lists)

		if s.cache != nil {
			s.storeOverview(fillCtx, userID, gen, lists)
		}
		return lists, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return v.([]domain.List), nil
}

// GetList resolves ref as a list ID first and as a slug otherwise.
func (s *Service) GetList(ctx context.Context, userID uuid.UUID, ref string) (*domain.List, error) {
	var (
		list *domain.List
		err  error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		list, err = s.lists.GetByID(ctx, userID, id)
	}
	if list == nil && (err == nil || errors.Is(err, domain.ErrListNotFound)) {
		list, err = s.lists.GetBySlug(ctx, userID, ref)
	}
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListActive(ctx, userID, domain.VisibleSince(s.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	list.Tasks = []domain.Task{}
	for _, t := range tasks {
		if t.ListID == list.ID {
			list.Tasks = append(list.Tasks, t)
		}
	}
	return list, nil
}

// UpdateList applies a partial update. A rename regenerates the slug.
func (s *Service) UpdateList(ctx context.Context, userID, listID uuid.UUID, update domain.ListUpdate) (*domain.List, error) {
	if update.Name != nil {
		if err := validateListName(*update.Name); err != nil {
			return nil, err
		}
		slug := domain.Slugify(*update.Name)
		update.Slug = &slug
	}

	if update.Empty() {
		return s.lists.GetByID(ctx, userID, listID)
	}

	list, err := s.lists.Update(ctx, userID, listID, update)
	if err != nil {
		return nil, err
	}

	s.invalidateOverview(ctx, userID)
	return list, nil
}

// UpdatePriorities persists a batch of priorities atomically and returns
// the re-sorted overview.
func (s *Service) UpdatePriorities(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) ([]domain.List, error) {
	seen := make(map[uuid.UUID]struct{}, len(updates))
	for _, u := range updates {
		if u.ID == uuid.Nil || u.Priority < 0 {
			return nil, domain.ErrInvalidData
		}
		if _, dup := seen[u.ID]; dup {
			return nil, domain.ErrInvalidData
		}
		seen[u.ID] = struct{}{}
	}

	if len(updates) > 0 {
		if err := s.lists.UpdatePriorities(ctx, userID, updates); err != nil {
			return nil, err
		}
		s.invalidateOverview(ctx, userID)
	}

	return s.ListLists(ctx, userID)
}

// DeleteList removes the list. Its tasks go with it through the foreign key.
func (s *Service) DeleteList(ctx context.Context, userID, listID uuid.UUID) error {
	if err := s.lists.Delete(ctx, userID, listID); err != nil {
		return err
	}
	s.invalidateOverview(ctx, userID)
	slog.InfoContext(ctx, "List deleted", "user_id", userID.String(), "list_id", listID.String())
	return nil
}
