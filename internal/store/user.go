package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// UserStore persists users.
type UserStore interface {
	// Create saves a new user. A plaintext Password is hashed before storage.
	// Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns ErrUserNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns every user, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// Update replaces name, email and role, and the password hash when a new
	// plaintext Password is set. Returns ErrUserNotFound or ErrEmailExists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user. Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
