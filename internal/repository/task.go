package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/taskloom/taskloom/internal/model"
)

// ErrTaskNotFound is returned when a task does not exist or does not
// belong to the requesting owner. The two cases share one signal so a
// caller cannot probe for other users' task ids.
var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, owner_id, title, description, status, created_at`

// TaskFilter defines filters for listing tasks. OwnerID is mandatory;
// Status and Search are applied only when non-empty.
type TaskFilter struct {
	OwnerID int64
	Status  model.TaskStatus
	Search  string
}

// CreateTask inserts a new task and fills in the generated id and
// creation timestamp.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (owner_id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Status,
	).Scan(&task.ID, &task.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by id, scoped to its owner.
func (r *Repository) GetTask(ctx context.Context, ownerID, taskID int64) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListTasks retrieves tasks matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, filter TaskFilter) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	args := []any{filter.OwnerID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (title LIKE $` + n + ` OR description LIKE $` + n + `)`
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask replaces the mutable fields of a task. The WHERE clause is
// scoped to the owner; zero affected rows means not found.
func (r *Repository) UpdateTask(ctx context.Context, task *model.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3
		WHERE id = $4 AND owner_id = $5
	`

	tag, err := r.db.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteTask deletes a task scoped to its owner. Zero affected rows
// means not found.
func (r *Repository) DeleteTask(ctx context.Context, ownerID, taskID int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	tag, err := r.db.Exec(ctx, query, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// scanTask scans a row into a Task.
func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
