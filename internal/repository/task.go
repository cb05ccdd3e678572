package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository handles task persistence operations. Every query is scoped to
// the owning user.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

// listTasksQuery orders newest first. Timestamps have millisecond precision, so id
// breaks ties between tasks created in the same millisecond.
const listTasksQuery = `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id`

// Create inserts a new task. The caller assigns the ID and timestamps.
func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority,
		nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a single task owned by userID.
func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByUser retrieves all tasks owned by userID, newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, listTasksQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

// Update overwrites the mutable fields of an existing task.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`

	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.Status, t.Priority, nullTime(t.DueDate), t.UpdatedAt,
		t.UserID, t.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a task owned by userID.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// BulkDelete removes the listed tasks owned by userID and returns how many were deleted.
func (r *TaskRepository) BulkDelete(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM tasks WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	return r.execAffected(ctx, query, append([]any{userID}, stringArgs(ids)...)...)
}

// BulkSetField sets column to value on the listed tasks owned by userID.
// Only status and priority can be bulk updated.
func (r *TaskRepository) BulkSetField(ctx context.Context, userID string, ids []string, column, value string, at time.Time) (int64, error) {
	if column != "status" && column != "priority" {
		return 0, fmt.Errorf("bulk update of column %q not supported", column)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	query := `UPDATE tasks SET ` + column + ` = ?, updated_at = ?
		WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := append([]any{value, at, userID}, stringArgs(ids)...)
	return r.execAffected(ctx, query, args...)
}

func (r *TaskRepository) execAffected(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t   model.Task
		due sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&due, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
