package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// It is satisfied by both the file-backed and the PostgreSQL
// implementations; business logic depends only on this contract.
type TaskStore interface {
	// GetAll retrieves every stored task in insertion order. Updating
	// an existing task keeps its original position. Individual records
	// that can no longer be decoded are skipped; well-formed records
	// around them are still returned.
	GetAll(ctx context.Context) ([]*domain.Task, error)

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Save upserts a task: an existing task with the same ID is
	// replaced in place, otherwise the task is appended. The task is
	// validated first; persistence is never attempted for an invalid
	// task and the validation error is returned unchanged.
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID if present and reports
	// whether a removal occurred. Absence is not an error.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
