package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

// PostgresTaskRepository implements task persistence against a PostgreSQL database.
// Every statement is scoped by owner and ignores soft-deleted rows.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Now is the clock used for soft-delete and update stamps.
	Now func() time.Time
}

// NewPostgresTaskRepository creates a new PostgresTaskRepository using the provided *sql.DB.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db, Now: time.Now}
}

const taskColumns = `id, user_id, title, description, status, created_at, updated_at`

// CreateTask inserts t.
func (r *PostgresTaskRepository) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.UserID, t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateTask: %w", err)
	}
	return nil
}

// FindTasks returns the owner's tasks matching filter, oldest first.
//
//	filter.UserID: owner, always applied
//	filter.Status: exact status match when non-empty
//	filter.Search: substring of title OR description when non-empty
func (r *PostgresTaskRepository) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND deleted_at IS NULL`)
	args := []any{filter.UserID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sb.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := strconv.Itoa(len(args))
		sb.WriteString(` AND (title LIKE $` + n + ` OR description LIKE $` + n + `)`)
	}
	sb.WriteString(` ORDER BY created_at, id`)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("FindTasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindTasks: %w", err)
	}
	return tasks, nil
}

// FindTaskByID returns the task with id owned by userID, or ErrNotFound.
func (r *PostgresTaskRepository) FindTaskByID(ctx context.Context, userID, id string) (*models.Task, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindTaskByID: %w", err)
	}
	return t, nil
}

// UpdateTaskStatus persists t.Status for the row matching t.ID and t.UserID
// and refreshes t.UpdatedAt. ErrNotFound means the row is gone.
func (r *PostgresTaskRepository) UpdateTaskStatus(ctx context.Context, t *models.Task) error {
	now := r.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND deleted_at IS NULL
	`, string(t.Status), now, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("UpdateTaskStatus: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateTaskStatus: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	t.UpdatedAt = now
	return nil
}

// DeleteTask soft-deletes the task with id owned by userID in one statement
// and returns the number of rows affected.
func (r *PostgresTaskRepository) DeleteTask(ctx context.Context, userID, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks SET deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`, r.Now().UTC(), id, userID)
	if err != nil {
		return 0, fmt.Errorf("DeleteTask: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteTask: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t      models.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	return &t, nil
}

// escapeLike makes s match literally inside a LIKE pattern. PostgreSQL uses
// backslash as the default LIKE escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
