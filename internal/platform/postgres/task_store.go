package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
)

const taskSelect = `
	SELECT id, title, description, start_date, due_date, link_issue, priority, status,
		completed_at, estimated_hours::float8, created_by, assignment_id, project_id,
		module_id, parent_id, created_at, updated_at
	FROM tasks
`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store. If logger is nil, the default
// logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (
			id, title, description, start_date, due_date, link_issue, priority, status,
			completed_at, estimated_hours, created_by, assignment_id, project_id,
			module_id, parent_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		nullTime(task.StartDate),
		nullTime(task.DueDate),
		task.LinkIssue,
		string(task.Priority),
		string(task.Status),
		nullTime(task.CompletedAt),
		nullFloat(task.EstimatedHours),
		task.CreatedBy,
		nullUUID(task.AssignmentID),
		nullUUID(task.ProjectID),
		nullUUID(task.ModuleID),
		nullUUID(task.ParentID),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("constraint", constraintName(err)),
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: referenced %s not found", store.ErrInvalidEntity, referenceName(err))
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// referenceName names the entity behind a tasks foreign key constraint.
func referenceName(err error) string {
	name := constraintName(err)
	switch {
	case strings.Contains(name, "assignment"):
		return "assignee"
	case strings.Contains(name, "created_by"):
		return "creator"
	case strings.Contains(name, "project"):
		return "project"
	case strings.Contains(name, "module"):
		return "module"
	case strings.Contains(name, "parent"):
		return "parent task"
	}
	return "entity"
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var priority, status string
	var start, due, completed sql.NullTime
	var hours sql.NullFloat64
	var assignee, project, module, parent uuid.NullUUID

	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&start,
		&due,
		&t.LinkIssue,
		&priority,
		&status,
		&completed,
		&hours,
		&t.CreatedBy,
		&assignee,
		&project,
		&module,
		&parent,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Priority = domain.TaskPriority(priority)
	t.Status = domain.TaskStatus(status)
	t.StartDate = datePtr(start)
	t.DueDate = datePtr(due)
	t.CompletedAt = timePtr(completed)
	t.EstimatedHours = floatPtr(hours)
	t.AssignmentID = uuidPtr(assignee)
	t.ProjectID = uuidPtr(project)
	t.ModuleID = uuidPtr(module)
	t.ParentID = uuidPtr(parent)
	return &t, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

// buildTaskFilter returns the WHERE clause and arguments for filter.
func buildTaskFilter(filter store.TaskFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.AssignmentID != nil {
		add("assignment_id = $%d", *filter.AssignmentID)
	}
	if filter.ProjectID != nil {
		add("project_id = $%d", *filter.ProjectID)
	}
	if filter.ParentID != nil {
		add("parent_id = $%d", *filter.ParentID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskFilter(filter)
	rows, err := s.db.QueryContext(ctx, taskSelect+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}
	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, start_date = $3, due_date = $4, link_issue = $5,
			priority = $6, status = $7, completed_at = $8, estimated_hours = $9,
			assignment_id = $10, project_id = $11, module_id = $12, parent_id = $13,
			updated_at = $14
		WHERE id = $15
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		nullTime(task.StartDate),
		nullTime(task.DueDate),
		task.LinkIssue,
		string(task.Priority),
		string(task.Status),
		nullTime(task.CompletedAt),
		nullFloat(task.EstimatedHours),
		nullUUID(task.AssignmentID),
		nullUUID(task.ProjectID),
		nullUUID(task.ModuleID),
		nullUUID(task.ParentID),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task update",
				slog.String("constraint", constraintName(err)),
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: referenced %s not found", store.ErrInvalidEntity, referenceName(err))
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return err
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}
