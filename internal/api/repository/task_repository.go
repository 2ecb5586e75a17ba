package repository

import (
	"context"
	"ctchen222/task-manager/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const taskColumns = `id, title, description, is_completed, created_at, updated_at, user_id`

//go:generate mockgen -destination=mocks/mock_task_repository.go -package=mocks . TaskRepository

// TaskRepository defines task data operations. Every read and write other
// than Create is scoped to the owning user.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Task, error)
	ExistsForUser(ctx context.Context, id, userID int64) (bool, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) (bool, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

type sqlTaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &sqlTaskRepository{db: db}
}

// ListByUser returns the user's tasks, newest first.
func (r *sqlTaskRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	tasks := []models.Task{}
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`)
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list tasks failed")
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetByIDAndUser returns nil, nil when the task does not exist or belongs
// to someone else.
func (r *sqlTaskRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetByIDAndUser")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", id), attribute.Int64("user.id", userID))

	var task models.Task
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &task, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return &task, nil
}

func (r *sqlTaskRepository) ExistsForUser(ctx context.Context, id, userID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.ExistsForUser")
	defer span.End()

	var exists bool
	query := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = ? AND user_id = ?)`)
	if err := r.db.GetContext(ctx, &exists, query, id, userID); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check task %d: %w", id, err)
	}
	return exists, nil
}

// Create inserts the task and fills in task.ID.
func (r *sqlTaskRepository) Create(ctx context.Context, task *models.Task) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.Create")
	defer span.End()

	query := r.db.Rebind(`INSERT INTO tasks (title, description, is_completed, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		task.Title, task.Description, task.IsCompleted, task.CreatedAt, task.UpdatedAt, task.UserID,
	).Scan(&task.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert task failed")
		return fmt.Errorf("failed to create task: %w", err)
	}

	span.SetAttributes(attribute.Int64("task.id", task.ID))
	return nil
}

// Update overwrites the mutable fields of a task owned by task.UserID. It
// reports false when no such task exists.
func (r *sqlTaskRepository) Update(ctx context.Context, task *models.Task) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", task.ID))

	query := r.db.Rebind(`UPDATE tasks SET title = ?, description = ?, is_completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.IsCompleted, task.UpdatedAt, task.ID, task.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update task failed")
		return false, fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	return affected(res)
}

func (r *sqlTaskRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", id))

	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete task failed")
		return false, fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
