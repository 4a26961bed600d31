package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// ProjectStore persists projects together with their memberships and modules.
type ProjectStore interface {
	// Create saves a project row. Members and modules are added separately.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID loads a project with its members and modules.
	// Returns ErrProjectNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// List loads every project, newest first, with members and modules.
	List(ctx context.Context) ([]domain.Project, error)

	// Update replaces name, description and owner.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes the project, its memberships and modules. Tasks keep
	// existing without a project.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember inserts a membership. It reports false without changing the
	// existing role when the user is already a member.
	AddMember(ctx context.Context, projectID, userID uuid.UUID, role domain.MemberRole) (bool, error)

	// UpdateMemberRole changes a member's role. Returns ErrMemberNotFound.
	UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role domain.MemberRole) error

	// RemoveMember deletes only the membership. Returns ErrMemberNotFound.
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error

	// CreateModule saves a module under its project.
	CreateModule(ctx context.Context, module *domain.ProjectModule) error

	// UpdateModule renames a module. Returns ErrModuleNotFound when the module
	// does not exist under module.ProjectID.
	UpdateModule(ctx context.Context, module *domain.ProjectModule) error

	// DeleteModule removes a module; its tasks lose the module reference.
	DeleteModule(ctx context.Context, projectID, moduleID uuid.UUID) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) ProjectStore
}
