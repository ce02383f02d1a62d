package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// TaskManager defines the business operations for tasks. It is the
// only surface permitted to apply business rules atop raw storage;
// the API layer consumes this interface.
type TaskManager interface {
	// Create builds a task from primitive request data, applying the
	// defaults (status pending, priority medium) for empty values.
	// Returns a *domain.ValidationError listing every violation if the
	// data is invalid; nothing is persisted in that case.
	Create(ctx context.Context, title string, description *string, status, priority string) (*domain.Task, error)

	// Get returns the task with the given ID, or nil if it does not
	// exist. Absence is a normal outcome, not an error.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns all tasks matching every supplied filter, in
	// storage order. Empty filter strings mean "no filter". A filter
	// value outside its closed set fails with ErrInvalidFilter.
	List(ctx context.Context, statusFilter, priorityFilter string) ([]*domain.Task, error)

	// Update applies a partial patch to the task with the given ID and
	// returns the updated task. Returns store.ErrTaskNotFound if the
	// task does not exist, or a *domain.ValidationError if the patch or
	// the patched task is invalid; no partial state is ever persisted.
	Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task with the given ID and reports whether a
	// removal occurred. Absence is not an error.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// TaskService is the concrete TaskManager backed by a store.TaskStore.
type TaskService struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService with the given store.
// If logger is nil, the default logger is used.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) *TaskService {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskService{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

// Ensure TaskService implements the TaskManager interface
var _ TaskManager = (*TaskService)(nil)

// Create implements TaskManager.Create.
func (s *TaskService) Create(
	ctx context.Context,
	title string,
	description *string,
	status, priority string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(title, description, domain.TaskStatus(status), domain.TaskPriority(priority))
	if err != nil {
		log.Warn("task creation rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.taskStore.Save(ctx, task); err != nil {
		log.Error("failed to persist new task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))
	return task, nil
}

// Get implements TaskManager.Get.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// List implements TaskManager.List.
// Filters are combined with logical AND; the order of the underlying
// storage is preserved.
func (s *TaskService) List(ctx context.Context, statusFilter, priorityFilter string) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var wantStatus domain.TaskStatus
	if statusFilter != "" {
		wantStatus = domain.TaskStatus(statusFilter)
		if !wantStatus.IsValid() {
			log.Warn("rejected status filter", slog.String("status", statusFilter))
			return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, statusFilter)
		}
	}

	var wantPriority domain.TaskPriority
	if priorityFilter != "" {
		wantPriority = domain.TaskPriority(priorityFilter)
		if !wantPriority.IsValid() {
			log.Warn("rejected priority filter", slog.String("priority", priorityFilter))
			return nil, fmt.Errorf("%w: priority %q", ErrInvalidFilter, priorityFilter)
		}
	}

	tasks, err := s.taskStore.GetAll(ctx)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, err
	}

	if statusFilter == "" && priorityFilter == "" {
		return tasks, nil
	}

	filtered := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if statusFilter != "" && task.Status != wantStatus {
			continue
		}
		if priorityFilter != "" && task.Priority != wantPriority {
			continue
		}
		filtered = append(filtered, task)
	}

	return filtered, nil
}

// Update implements TaskManager.Update.
// The patch is validated in partial mode, applied to a copy of the
// stored task (ID and CreatedAt are never altered), and the full result
// is re-validated before being persisted. Any failure aborts the update
// with the stored task untouched.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found for update", slog.String("task_id", id.String()))
			return nil, err
		}
		log.Error("failed to load task for update",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		log.Warn("task patch rejected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	updated := patch.Apply(existing)

	if err := updated.Validate(); err != nil {
		log.Warn("patched task failed validation",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	if err := s.taskStore.Save(ctx, updated); err != nil {
		log.Error("failed to persist updated task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	log.Info("task updated", slog.String("task_id", id.String()))
	return updated, nil
}

// Delete implements TaskManager.Delete.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	removed, err := s.taskStore.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return false, err
	}

	if removed {
		log.Info("task deleted", slog.String("task_id", id.String()))
	}
	return removed, nil
}
