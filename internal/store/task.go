package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// TaskFilter narrows task listings. Nil and empty fields match everything.
type TaskFilter struct {
	AssignmentID *uuid.UUID
	ProjectID    *uuid.UUID
	ParentID     *uuid.UUID
	Status       domain.TaskStatus
}

// TaskStore persists tasks.
type TaskStore interface {
	// Create saves a new task. Returns ErrInvalidEntity when a referenced
	// user, project, module or parent does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns matching tasks, newest first.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)

	// Update replaces every mutable field.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task and its subtasks.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
