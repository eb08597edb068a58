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

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, user_id, list_id, name, description, date, completed, tags, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.ListID, &t.Name, &t.Description, &t.Date, &t.Completed, &t.Tags, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

// queryActiveTasks is shared with ListRepo so the list overview and the
// task listing apply the same visibility predicate.
func queryActiveTasks(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, completedSince time.Time) ([]domain.Task, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		  AND (completed = FALSE OR (completed = TRUE AND updated_at >= $2))
		ORDER BY date ASC, created_at ASC`, userID, completedSince)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Task, error) {
		t, err := scanTask(row)
		if err != nil {
			return domain.Task{}, err
		}
		return *t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Create(ctx context.Context, nt domain.NewTask) (*domain.Task, error) {
	tags := nt.Tags
	if tags == nil {
		tags = []string{}
	}
	t, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, list_id, name, description, date, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		nt.UserID, nt.ListID, nt.Name, nt.Description, nt.Date, tags))
	if _, ok := constraintViolation(err, codeForeignKeyViolation); ok {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) ListActive(ctx context.Context, userID uuid.UUID, completedSince time.Time) ([]domain.Task, error) {
	return queryActiveTasks(ctx, r.pool, userID, completedSince)
}

// Update applies the non-nil patch fields and always bumps updated_at.
func (r *TaskRepo) Update(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	var tags any
	if p.Tags != nil {
		tags = *p.Tags
	}

	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks SET
			name        = COALESCE($3, name),
			description = COALESCE($4, description),
			date        = COALESCE($5, date),
			list_id     = COALESCE($6, list_id),
			tags        = COALESCE($7::text[], tags),
			completed   = COALESCE($8, completed),
			updated_at  = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		taskID, userID, p.Name, p.Description, p.Date, p.ListID, tags, p.Completed))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if _, ok := constraintViolation(err, codeForeignKeyViolation); ok {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
