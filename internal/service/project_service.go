package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service/access"
	"github.com/phrazzld/taskhub/internal/store"
)

// CreateProjectInput describes a new project. A nil OwnerID makes the
// creator the owner.
type CreateProjectInput struct {
	Name    string
	Desc    string
	OwnerID *uuid.UUID
}

// UpdateProjectInput holds optional changes; nil fields are left alone.
type UpdateProjectInput struct {
	Name    *string
	Desc    *string
	OwnerID *uuid.UUID
}

// ProjectService manages projects, their memberships and modules.
type ProjectService interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// CreateProject stores the project and makes its owner a project admin
	// in one transaction.
	CreateProject(ctx context.Context, actor *domain.User, input CreateProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, actor *domain.User, id uuid.UUID, input UpdateProjectInput) (*domain.Project, error)
	DeleteProject(ctx context.Context, actor *domain.User, id uuid.UUID) error

	// AddMember reports false when the user was already a member; the
	// existing role is kept.
	AddMember(ctx context.Context, actor *domain.User, projectID, userID uuid.UUID, role domain.MemberRole) (bool, error)
	UpdateMemberRole(ctx context.Context, actor *domain.User, projectID, userID uuid.UUID, role domain.MemberRole) error
	RemoveMember(ctx context.Context, actor *domain.User, projectID, userID uuid.UUID) error

	AddModule(ctx context.Context, actor *domain.User, projectID uuid.UUID, name, desc string) (*domain.ProjectModule, error)
	UpdateModule(ctx context.Context, actor *domain.User, projectID, moduleID uuid.UUID, name, desc string) (*domain.ProjectModule, error)
	DeleteModule(ctx context.Context, actor *domain.User, projectID, moduleID uuid.UUID) error
}

// ProjectServiceImpl implements the ProjectService interface
type ProjectServiceImpl struct {
	projectStore store.ProjectStore
	userStore    store.UserStore
	db           *sql.DB
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectStore store.ProjectStore,
	userStore store.UserStore,
	db *sql.DB,
	logger *slog.Logger,
) *ProjectServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectServiceImpl{
		projectStore: projectStore,
		userStore:    userStore,
		db:           db,
		logger:       logger.With(slog.String("component", "project_service")),
	}
}

var _ ProjectService = (*ProjectServiceImpl)(nil)

// ListProjects implements ProjectService
func (s *ProjectServiceImpl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projectStore.List(ctx)
	if err != nil {
		return nil, NewServiceError("project", "list", err)
	}
	return projects, nil
}

// GetProject implements ProjectService
func (s *ProjectServiceImpl) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("project", "get", err)
	}
	return project, nil
}

// requireUser turns a missing user into an invalid-entity error.
func (s *ProjectServiceImpl) requireUser(ctx context.Context, id uuid.UUID, field string) error {
	if _, err := s.userStore.GetByID(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("%w: %s %s does not exist", store.ErrInvalidEntity, field, id)
		}
		return err
	}
	return nil
}

// manageable loads the project and checks that actor may manage it.
func (s *ProjectServiceImpl) manageable(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageProject(actor, project) {
		logger.FromContextOrDefault(ctx, s.logger).Warn("project access denied",
			slog.String("project_id", id.String()),
			slog.String("actor_id", actor.ID.String()))
		return nil, ErrForbidden
	}
	return project, nil
}

// CreateProject implements ProjectService
func (s *ProjectServiceImpl) CreateProject(
	ctx context.Context,
	actor *domain.User,
	input CreateProjectInput,
) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ownerID := actor.ID
	if input.OwnerID != nil {
		ownerID = *input.OwnerID
		if err := s.requireUser(ctx, ownerID, "owner"); err != nil {
			return nil, NewServiceError("project", "create", err)
		}
	}

	project, err := domain.NewProject(input.Name, input.Desc, &ownerID, actor.ID)
	if err != nil {
		return nil, NewServiceError("project", "create", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.projectStore.WithTx(tx)
		if err := txStore.Create(ctx, project); err != nil {
			return err
		}
		_, err := txStore.AddMember(ctx, project.ID, ownerID, domain.MemberRoleAdmin)
		return err
	})
	if err != nil {
		log.Error("failed to create project", slog.String("error", err.Error()))
		return nil, NewServiceError("project", "create", err)
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("owner_id", ownerID.String()))

	created, err := s.projectStore.GetByID(ctx, project.ID)
	if err != nil {
		return nil, NewServiceError("project", "create", err)
	}
	return created, nil
}

// UpdateProject implements ProjectService
func (s *ProjectServiceImpl) UpdateProject(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	input UpdateProjectInput,
) (*domain.Project, error) {
	project, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, NewServiceError("project", "update", err)
	}

	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Desc != nil {
		project.Desc = *input.Desc
	}
	if input.OwnerID != nil {
		if err := s.requireUser(ctx, *input.OwnerID, "owner"); err != nil {
			return nil, NewServiceError("project", "update", err)
		}
		owner := *input.OwnerID
		project.OwnerID = &owner
	}
	if err := project.Validate(); err != nil {
		return nil, NewServiceError("project", "update", err)
	}

	if err := s.projectStore.Update(ctx, project); err != nil {
		return nil, NewServiceError("project", "update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project updated",
		slog.String("project_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return project, nil
}

// DeleteProject implements ProjectService
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return NewServiceError("project", "delete", err)
	}
	if err := s.projectStore.Delete(ctx, id); err != nil {
		return NewServiceError("project", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project deleted",
		slog.String("project_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return nil
}

// AddMember implements ProjectService
func (s *ProjectServiceImpl) AddMember(
	ctx context.Context,
	actor *domain.User,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) (bool, error) {
	if role == "" {
		role = domain.DefaultMemberRole
	}
	if !role.Valid() {
		return false, NewServiceError("project", "add_member", domain.ErrInvalidMemberRole)
	}
	if _, err := s.manageable(ctx, actor, projectID); err != nil {
		return false, NewServiceError("project", "add_member", err)
	}
	if err := s.requireUser(ctx, userID, "user"); err != nil {
		return false, NewServiceError("project", "add_member", err)
	}

	added, err := s.projectStore.AddMember(ctx, projectID, userID, role)
	if err != nil {
		return false, NewServiceError("project", "add_member", err)
	}
	return added, nil
}

// UpdateMemberRole implements ProjectService
func (s *ProjectServiceImpl) UpdateMemberRole(
	ctx context.Context,
	actor *domain.User,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) error {
	if !role.Valid() {
		return NewServiceError("project", "update_member", domain.ErrInvalidMemberRole)
	}
	if _, err := s.manageable(ctx, actor, projectID); err != nil {
		return NewServiceError("project", "update_member", err)
	}
	if err := s.projectStore.UpdateMemberRole(ctx, projectID, userID, role); err != nil {
		return NewServiceError("project", "update_member", err)
	}
	return nil
}

// RemoveMember implements ProjectService
func (s *ProjectServiceImpl) RemoveMember(ctx context.Context, actor *domain.User, projectID, userID uuid.UUID) error {
	if _, err := s.manageable(ctx, actor, projectID); err != nil {
		return NewServiceError("project", "remove_member", err)
	}
	if err := s.projectStore.RemoveMember(ctx, projectID, userID); err != nil {
		return NewServiceError("project", "remove_member", err)
	}
	return nil
}

// AddModule implements ProjectService
func (s *ProjectServiceImpl) AddModule(
	ctx context.Context,
	actor *domain.User,
	projectID uuid.UUID,
	name, desc string,
) (*domain.ProjectModule, error) {
	if _, err := s.manageable(ctx, actor, projectID); err != nil {
		return nil, NewServiceError("project", "add_module", err)
	}
	module, err := domain.NewProjectModule(projectID, name, desc)
	if err != nil {
		return nil, NewServiceError("project", "add_module", err)
	}
	if err := s.projectStore.CreateModule(ctx, module); err != nil {
		return nil, NewServiceError("project", "add_module", err)
	}
	return module, nil
}

// UpdateModule implements ProjectService
func (s *ProjectServiceImpl) UpdateModule(
	ctx context.Context,
	actor *domain.User,
	projectID, moduleID uuid.UUID,
	name, desc string,
) (*domain.ProjectModule, error) {
	project, err := s.manageable(ctx, actor, projectID)
	if err != nil {
		return nil, NewServiceError("project", "update_module", err)
	}
	module, ok := project.Module(moduleID)
	if !ok {
		return nil, NewServiceError("project", "update_module", store.ErrModuleNotFound)
	}

	module.Name = strings.TrimSpace(name)
	module.Desc = desc
	if err := module.Validate(); err != nil {
		return nil, NewServiceError("project", "update_module", err)
	}
	if err := s.projectStore.UpdateModule(ctx, &module); err != nil {
		return nil, NewServiceError("project", "update_module", err)
	}
	return &module, nil
}

// DeleteModule implements ProjectService
func (s *ProjectServiceImpl) DeleteModule(ctx context.Context, actor *domain.User, projectID, moduleID uuid.UUID) error {
	if _, err := s.manageable(ctx, actor, projectID); err != nil {
		return NewServiceError("project", "delete_module", err)
	}
	if err := s.projectStore.DeleteModule(ctx, projectID, moduleID); err != nil {
		return NewServiceError("project", "delete_module", err)
	}
	return nil
}
