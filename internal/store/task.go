package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task. The task is validated first.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns every task, oldest first.
	List(ctx context.Context) ([]*domain.Task, error)

	// Update overwrites the mutable fields of an existing task.
	// CreatedBy is never written, and Notified can only move from false to
	// true: a stored true is kept even if task.Notified is false.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// MarkNotified sets the notified flag of a task without touching any
	// other field. Returns ErrTaskNotFound if the task does not exist.
	MarkNotified(ctx context.Context, id uuid.UUID) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
