package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/tasklists/internal/domain"
)

type ListRepo struct {
	pool *pgxpool.Pool
}

func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

const listColumns = `id, user_id, name, slug, description, priority, is_archived, created_at, updated_at`

func scanList(row pgx.Row) (*domain.List, error) {
	var l domain.List
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Slug, &l.Description, &l.Priority, &l.IsArchived, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// listConflict maps the per-user uniqueness constraints to domain errors.
func listConflict(err error) error {
	constraint, ok := constraintViolation(err, codeUniqueViolation)
	if !ok {
		return nil
	}
	switch constraint {
	case "lists_user_name_key":
		return domain.ErrNameTaken
	case "lists_user_slug_key":
		return domain.ErrSlugTaken
	}
	return nil
}

func (r *ListRepo) Create(ctx context.Context, nl domain.NewList) (*domain.List, error) {
	l, err := scanList(r.pool.QueryRow(ctx, `
		INSERT INTO lists (user_id, name, slug, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+listColumns,
		nl.UserID, nl.Name, nl.Slug, nl.Description))
	if conflict := listConflict(err); conflict != nil {
		return nil, conflict
	}
	if _, ok := constraintViolation(err, codeForeignKeyViolation); ok {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return l, nil
}

func (r *ListRepo) GetByID(ctx context.Context, userID, listID uuid.UUID) (*domain.List, error) {
	l, err := scanList(r.pool.QueryRow(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = $1 AND user_id = $2`, listID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list by ID: %w", err)
	}
	return l, nil
}

func (r *ListRepo) GetBySlug(ctx context.Context, userID uuid.UUID, slug string) (*domain.List, error) {
	l, err := scanList(r.pool.QueryRow(ctx,
		`SELECT `+listColumns+` FROM lists WHERE slug = $1 AND user_id = $2`, slug, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list by slug: %w", err)
	}
	return l, nil
}

func (r *ListRepo) ListByUser(ctx context.Context, userID uuid.UUID, completedSince time.Time) ([]domain.List, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listColumns+`
		FROM lists
		WHERE user_id = $1 AND NOT is_archived
		ORDER BY priority DESC, updated_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	lists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.List, error) {
		l, err := scanList(row)
		if err != nil {
			return domain.List{}, err
		}
		return *l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan lists: %w", err)
	}

	tasks, err := queryActiveTasks(ctx, r.pool, userID, completedSince)
	if err != nil {
		return nil, err
	}

	byList := make(map[uuid.UUID][]domain.Task, len(lists))
	for _, t := range tasks {
		byList[t.ListID] = append(byList[t.ListID], t)
	}
	for i := range lists {
		lists[i].Tasks = byList[lists[i].ID]
		if lists[i].Tasks == nil {
			lists[i].Tasks = []domain.Task{}
		}
	}
	return lists, nil
}

func (r *ListRepo) Update(ctx context.Context, userID, listID uuid.UUID, u domain.ListUpdate) (*domain.List, error) {
	l, err := scanList(r.pool.QueryRow(ctx, `
		UPDATE lists SET
			name        = COALESCE($3, name),
			slug        = COALESCE($4, slug),
			description = COALESCE($5, description),
			is_archived = COALESCE($6, is_archived),
			updated_at  = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+listColumns,
		listID, userID, u.Name, u.Slug, u.Description, u.IsArchived))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListNotFound
	}
	if conflict := listConflict(err); conflict != nil {
		return nil, conflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return l, nil
}

// UpdatePriorities applies the whole batch in one transaction. A list the
// user does not own aborts it with ErrListNotFound. updated_at is left alone
// so ties keep their order.
func (r *ListRepo) UpdatePriorities(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE lists SET priority = $3 WHERE id = $1 AND user_id = $2`, u.ID, userID, u.Priority)
	}

	results := tx.SendBatch(ctx, batch)
	for range updates {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to update priority: %w", err)
		}
		if tag.RowsAffected() == 0 {
			_ = results.Close()
			return domain.ErrListNotFound
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the list; tasks follow via ON DELETE CASCADE.
func (r *ListRepo) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1 AND user_id = $2`, listID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListNotFound
	}
	return nil
}
