package service

import (
	"context"
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/api/repository"
	"ctchen222/task-manager/internal/events"
	"ctchen222/task-manager/internal/validator"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TaskService implements task CRUD. Every operation is scoped to userID.
type TaskService interface {
	List(ctx context.Context, userID int64) ([]models.TaskResponse, error)
	GetByID(ctx context.Context, id, userID int64) (*models.TaskResponse, error)
	Create(ctx context.Context, req *models.CreateTaskRequest, userID int64) (*models.TaskResponse, error)
	Update(ctx context.Context, id int64, req *models.UpdateTaskRequest, userID int64) (*models.TaskResponse, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

type taskService struct {
	taskRepo  repository.TaskRepository
	publisher events.Publisher
	opts      options
}

// NewTaskService creates a TaskService. publisher may be nil.
func NewTaskService(taskRepo repository.TaskRepository, publisher events.Publisher, opts ...Option) TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &taskService{taskRepo: taskRepo, publisher: publisher, opts: buildOptions(opts)}
}

func (s *taskService) List(ctx context.Context, userID int64) ([]models.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskService.List", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if userID <= 0 {
		return nil, apperror.NewUnauthorized()
	}

	tasks, err := s.taskRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list tasks")
	}

	out := make([]models.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ToResponse())
	}
	return out, nil
}

// GetByID returns nil, nil when the task is absent or owned by someone else.
func (s *taskService) GetByID(ctx context.Context, id, userID int64) (*models.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskService.GetByID", trace.WithAttributes(
		attribute.Int64("task.id", id),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if userID <= 0 {
		return nil, apperror.NewUnauthorized()
	}

	task, err := s.taskRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to get task")
	}
	if task == nil {
		return nil, nil
	}
	resp := task.ToResponse()
	return &resp, nil
}

func (s *taskService) Create(ctx context.Context, req *models.CreateTaskRequest, userID int64) (*models.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Create", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if userID <= 0 {
		return nil, apperror.NewUnauthorized()
	}

	req.Sanitize()
	if err := validateTask(req, req.Title, req.Description); err != nil {
		return nil, err
	}

	now := s.opts.timestamp()
	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, apperror.Wrap(err, "failed to create task")
	}

	slog.InfoContext(ctx, "Task created", "task.id", task.ID, "user.id", userID)
	resp := task.ToResponse()
	s.publish(ctx, events.TaskCreated, userID, task.ID, &resp)
	return &resp, nil
}

func (s *taskService) Update(ctx context.Context, id int64, req *models.UpdateTaskRequest, userID int64) (*models.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Update", trace.WithAttributes(
		attribute.Int64("task.id", id),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if userID <= 0 {
		return nil, apperror.NewUnauthorized()
	}

	req.Sanitize()
	if err := validateTask(req, req.Title, req.Description); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to get task")
	}
	if task == nil {
		return nil, apperror.NewTaskNotFound(id)
	}

	// updatedAt must move forward even when the clock has not.
	now := s.opts.timestamp()
	if !now.After(task.UpdatedAt) {
		now = task.UpdatedAt.Add(time.Microsecond)
	}

	task.Title = req.Title
	task.Description = req.Description
	task.IsCompleted = req.IsCompleted
	task.UpdatedAt = now

	ok, err := s.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to update task")
	}
	if !ok {
		return nil, apperror.NewTaskNotFound(id)
	}

	slog.InfoContext(ctx, "Task updated", "task.id", id, "user.id", userID, "task.completed", task.IsCompleted)
	resp := task.ToResponse()
	s.publish(ctx, events.TaskUpdated, userID, id, &resp)
	return &resp, nil
}

// Delete reports false when the task is absent or owned by someone else.
func (s *taskService) Delete(ctx context.Context, id, userID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Delete", trace.WithAttributes(
		attribute.Int64("task.id", id),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if userID <= 0 {
		return false, apperror.NewUnauthorized()
	}

	exists, err := s.taskRepo.ExistsForUser(ctx, id, userID)
	if err != nil {
		return false, apperror.Wrap(err, "failed to check task")
	}
	if !exists {
		return false, nil
	}

	ok, err := s.taskRepo.Delete(ctx, id, userID)
	if err != nil {
		return false, apperror.Wrap(err, "failed to delete task")
	}
	if ok {
		slog.InfoContext(ctx, "Task deleted", "task.id", id, "user.id", userID)
		s.publish(ctx, events.TaskDeleted, userID, id, nil)
	}
	return ok, nil
}

func (s *taskService) publish(ctx context.Context, eventType string, userID, taskID int64, task *models.TaskResponse) {
	event, err := events.NewTaskEvent(eventType, userID, taskID, task)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to publish task event", "event.type", eventType, "task.id", taskID, "error", err)
	}
}

// validateTask runs the declarative rules on req and then re-checks the
// sanitized title and description directly.
func validateTask(req any, title string, description *string) error {
	details := validator.Struct(req)
	add := func(msg string) {
		if !slices.Contains(details, msg) {
			details = append(details, msg)
		}
	}

	if strings.TrimSpace(title) == "" {
		add(validator.Message("title", "required", ""))
	} else if !validator.TaskTitlePattern.MatchString(title) {
		add(validator.Message("title", "tasktitle", ""))
	}
	if description != nil && !validator.TaskDescPattern.MatchString(*description) {
		add(validator.Message("description", "taskdesc", ""))
	}

	if len(details) > 0 {
		return apperror.NewValidation(details...)
	}
	return nil
}
