package service

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/logger"
	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/atinyakov/TaskKeeper/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskRepository defines the persistence operations needed by the TaskService.
// Every method is scoped by owner.
type TaskRepository interface {
	// CreateTask inserts a new task.
	CreateTask(ctx context.Context, t *models.Task) error
	// FindTasks lists tasks matching filter.
	FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	// FindTaskByID returns repository.ErrNotFound unless the task exists and belongs to userID.
	FindTaskByID(ctx context.Context, userID, id string) (*models.Task, error)
	// UpdateTaskStatus persists t.Status; repository.ErrNotFound if the row is gone.
	UpdateTaskStatus(ctx context.Context, t *models.Task) error
	// DeleteTask removes the task and returns the number of rows affected.
	DeleteTask(ctx context.Context, userID, id string) (int64, error)
}

// TaskService implements owner-scoped task operations.
type TaskService struct {
	// repo is the underlying persistence repository.
	repo TaskRepository
	now  func() time.Time
}

// NewTaskService constructs a TaskService with the provided TaskRepository.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// ListTasks returns the owner's tasks, optionally narrowed by status and by
// a substring of title or description.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, status models.TaskStatus, search string) ([]models.Task, error) {
	log := logger.FromContext(ctx)
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("invalid status: " + string(status))
	}

	filter := models.TaskFilter{UserID: ownerID, Status: status, Search: search}
	tasks, err := s.repo.FindTasks(ctx, filter)
	if err != nil {
		log.Error("failed to retrieve tasks", zap.String("status", string(status)), zap.String("search", search), zap.Error(err))
		return nil, apperrors.Internal("failed to retrieve tasks", err)
	}

	log.Debug("tasks retrieved", zap.Int("count", len(tasks)))
	return tasks, nil
}

// GetTask returns the task only if it exists and is owned by ownerID.
// Anything else is apperrors.ErrNotFound.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	t, err := s.repo.FindTaskByID(ctx, ownerID, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		logger.FromContext(ctx).Info("task not found", zap.String("task_id", taskID))
		return nil, notFound(taskID)
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to retrieve task", zap.String("task_id", taskID), zap.Error(err))
		return nil, apperrors.Internal("failed to retrieve task", err)
	}
	return t, nil
}

// CreateTask stores a new OPEN task owned by ownerID.
func (s *TaskService) CreateTask(ctx context.Context, ownerID, title, description string) (*models.Task, error) {
	log := logger.FromContext(ctx)

	now := s.now().UTC()
	t := &models.Task{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      models.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		log.Error("failed to create task", zap.String("title", title), zap.Error(err))
		return nil, apperrors.Internal("failed to create task", err)
	}

	log.Info("task created", zap.String("task_id", t.ID))
	return t, nil
}

// UpdateTaskStatus moves the task to status regardless of its current one.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, ownerID, taskID string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("invalid status: " + string(status))
	}

	t, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	prev := t.Status
	t.Status = status
	if err := s.repo.UpdateTaskStatus(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(taskID)
		}
		logger.FromContext(ctx).Error("failed to update task", zap.String("task_id", taskID), zap.Error(err))
		return nil, apperrors.Internal("failed to update task", err)
	}

	logger.FromContext(ctx).Info("task status updated",
		zap.String("task_id", taskID),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
	)
	return t, nil
}

// DeleteTask removes the task owned by ownerID.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	log := logger.FromContext(ctx)

	n, err := s.repo.DeleteTask(ctx, ownerID, taskID)
	if err != nil {
		log.Error("failed to delete task", zap.String("task_id", taskID), zap.Error(err))
		return apperrors.Internal("failed to delete task", err)
	}
	if n == 0 {
		log.Info("task not found", zap.String("task_id", taskID))
		return notFound(taskID)
	}

	log.Info("task deleted", zap.String("task_id", taskID))
	return nil
}

func notFound(taskID string) error {
	return apperrors.NotFound("no task found with id " + taskID)
}
