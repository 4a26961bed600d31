package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

const projectColumns = `id, name, description, owner_id, created_by, created_at, updated_at`

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a project store. If logger is nil, the
// default logger is used.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, logger: s.logger}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Desc,
		nullUUID(project.OwnerID),
		nullUUID(project.CreatedBy),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during project creation",
				slog.String("error", err.Error()),
				slog.String("project_id", project.ID.String()))
			return fmt.Errorf("%w: owner or creator not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return MapError(err)
	}

	log.Info("project created successfully", slog.String("project_id", project.ID.String()))
	return nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var owner, creator uuid.NullUUID
	if err := row.Scan(&p.ID, &p.Name, &p.Desc, &owner, &creator, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.OwnerID = uuidPtr(owner)
	p.CreatedBy = uuidPtr(creator)
	p.Members = []domain.ProjectMember{}
	p.Modules = []domain.ProjectModule{}
	return &p, nil
}

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found", slog.String("project_id", id.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return nil, MapError(err)
	}

	byID := map[uuid.UUID]*domain.Project{project.ID: project}
	if err := s.attachMembers(ctx, byID, &id); err != nil {
		return nil, err
	}
	if err := s.attachModules(ctx, byID, &id); err != nil {
		return nil, err
	}
	return project, nil
}

// List implements store.ProjectStore.List
func (s *PostgresProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*domain.Project
	byID := make(map[uuid.UUID]*domain.Project)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			log.Error("failed to scan project row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating project rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	_ = rows.Close()

	if len(projects) > 0 {
		if err := s.attachMembers(ctx, byID, nil); err != nil {
			return nil, err
		}
		if err := s.attachModules(ctx, byID, nil); err != nil {
			return nil, err
		}
	}

	result := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		result = append(result, *p)
	}
	return result, nil
}

// attachMembers loads memberships for one project, or for all when projectID is nil.
func (s *PostgresProjectStore) attachMembers(ctx context.Context, byID map[uuid.UUID]*domain.Project, projectID *uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT pm.project_id, pm.user_id, u.name, u.email, pm.role, pm.created_at
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE $1::uuid IS NULL OR pm.project_id = $1
		ORDER BY pm.created_at, u.name
	`
	rows, err := s.db.QueryContext(ctx, query, nullUUID(projectID))
	if err != nil {
		log.Error("failed to load project members", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m domain.ProjectMember
		var role string
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Name, &m.Email, &role, &m.CreatedAt); err != nil {
			log.Error("failed to scan project member", slog.String("error", err.Error()))
			return MapError(err)
		}
		m.Role = domain.MemberRole(role)
		if p, ok := byID[m.ProjectID]; ok {
			p.Members = append(p.Members, m)
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating project members", slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// attachModules loads modules for one project, or for all when projectID is nil.
func (s *PostgresProjectStore) attachModules(ctx context.Context, byID map[uuid.UUID]*domain.Project, projectID *uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, name, description, created_at, updated_at
		FROM project_modules
		WHERE $1::uuid IS NULL OR project_id = $1
		ORDER BY created_at, name
	`
	rows, err := s.db.QueryContext(ctx, query, nullUUID(projectID))
	if err != nil {
		log.Error("failed to load project modules", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m domain.ProjectModule
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Desc, &m.CreatedAt, &m.UpdatedAt); err != nil {
			log.Error("failed to scan project module", slog.String("error", err.Error()))
			return MapError(err)
		}
		if p, ok := byID[m.ProjectID]; ok {
			p.Modules = append(p.Modules, m)
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating project modules", slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Update implements store.ProjectStore.Update
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during update",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}
	project.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects
		SET name = $1, description = $2, owner_id = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		project.Name,
		project.Desc,
		nullUUID(project.OwnerID),
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("owner not found during project update",
				slog.String("project_id", project.ID.String()))
			return fmt.Errorf("%w: owner not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrProjectNotFound); err != nil {
		return err
	}

	log.Info("project updated successfully", slog.String("project_id", project.ID.String()))
	return nil
}

// Delete implements store.ProjectStore.Delete
func (s *PostgresProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete project",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrProjectNotFound); err != nil {
		return err
	}

	log.Info("project deleted successfully", slog.String("project_id", id.String()))
	return nil
}

// AddMember implements store.ProjectStore.AddMember
func (s *PostgresProjectStore) AddMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !role.Valid() {
		return false, domain.ErrInvalidMemberRole
	}

	query := `
		INSERT INTO project_members (project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, projectID, userID, string(role), time.Now().UTC())
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("project or user not found when adding member",
				slog.String("project_id", projectID.String()),
				slog.String("user_id", userID.String()))
			return false, fmt.Errorf("%w: project or user not found", store.ErrInvalidEntity)
		}
		log.Error("failed to add project member",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return false, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		log.Debug("user already a project member",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return false, nil
	}

	log.Info("project member added",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()),
		slog.String("role", string(role)))
	return true, nil
}

// UpdateMemberRole implements store.ProjectStore.UpdateMemberRole
func (s *PostgresProjectStore) UpdateMemberRole(
	ctx context.Context,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !role.Valid() {
		return domain.ErrInvalidMemberRole
	}

	query := `UPDATE project_members SET role = $1 WHERE project_id = $2 AND user_id = $3`
	result, err := s.db.ExecContext(ctx, query, string(role), projectID, userID)
	if err != nil {
		log.Error("failed to update member role",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMemberNotFound)
}

// RemoveMember implements store.ProjectStore.RemoveMember
func (s *PostgresProjectStore) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		log.Error("failed to remove project member",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrMemberNotFound); err != nil {
		return err
	}

	log.Info("project member removed",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// CreateModule implements store.ProjectStore.CreateModule
func (s *PostgresProjectStore) CreateModule(ctx context.Context, module *domain.ProjectModule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := module.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO project_modules (id, project_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		module.ID,
		module.ProjectID,
		module.Name,
		module.Desc,
		module.CreatedAt,
		module.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: project %s not found", store.ErrInvalidEntity, module.ProjectID)
		}
		log.Error("failed to create module",
			slog.String("error", err.Error()),
			slog.String("project_id", module.ProjectID.String()))
		return MapError(err)
	}

	log.Info("project module created",
		slog.String("module_id", module.ID.String()),
		slog.String("project_id", module.ProjectID.String()))
	return nil
}

// UpdateModule implements store.ProjectStore.UpdateModule
func (s *PostgresProjectStore) UpdateModule(ctx context.Context, module *domain.ProjectModule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := module.Validate(); err != nil {
		return err
	}
	module.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE project_modules
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4 AND project_id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		module.Name,
		module.Desc,
		module.UpdatedAt,
		module.ID,
		module.ProjectID,
	)
	if err != nil {
		log.Error("failed to update module",
			slog.String("error", err.Error()),
			slog.String("module_id", module.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrModuleNotFound)
}

// DeleteModule implements store.ProjectStore.DeleteModule
func (s *PostgresProjectStore) DeleteModule(ctx context.Context, projectID, moduleID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM project_modules WHERE id = $1 AND project_id = $2`
	result, err := s.db.ExecContext(ctx, query, moduleID, projectID)
	if err != nil {
		log.Error("failed to delete module",
			slog.String("error", err.Error()),
			slog.String("module_id", moduleID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrModuleNotFound); err != nil {
		return err
	}

	log.Info("project module deleted",
		slog.String("module_id", moduleID.String()),
		slog.String("project_id", projectID.String()))
	return nil
}
