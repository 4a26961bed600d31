package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service/access"
	"github.com/phrazzld/taskhub/internal/store"
)

// TaskInput is the full set of writable task fields. Updates replace every
// field; an empty Priority or Status keeps the current value.
type TaskInput struct {
	Title          string
	Description    string
	StartDate      *time.Time
	DueDate        *time.Time
	LinkIssue      string
	Priority       domain.TaskPriority
	Status         domain.TaskStatus
	CompletedAt    *time.Time
	EstimatedHours *float64
	AssignmentID   *uuid.UUID
	ProjectID      *uuid.UUID
	ModuleID       *uuid.UUID
	ParentID       *uuid.UUID
}

// TaskService manages tasks and enforces the cross-entity task rules:
// module/project consistency and one level of subtasks inside the parent's
// dates.
type TaskService interface {
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	CreateTask(ctx context.Context, actor *domain.User, input TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, actor *domain.User, id uuid.UUID, input TaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore    store.TaskStore
	projectStore store.ProjectStore
	userStore    store.UserStore
	now          func() time.Time
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService. A nil clock uses time.Now.
func NewTaskService(
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	clock func() time.Time,
	logger *slog.Logger,
) *TaskServiceImpl {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		taskStore:    taskStore,
		projectStore: projectStore,
		userStore:    userStore,
		now:          clock,
		logger:       logger.With(slog.String("component", "task_service")),
	}
}

var _ TaskService = (*TaskServiceImpl)(nil)

// ListTasks implements TaskService
func (s *TaskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}
	return tasks, nil
}

// GetTask implements TaskService
func (s *TaskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

// CreateTask implements TaskService
func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor *domain.User, input TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(actor.ID, input.Title)
	if err != nil {
		return nil, NewServiceError("task", "create", err)
	}
	if err := s.apply(ctx, task, input, false); err != nil {
		return nil, NewServiceError("task", "create", err)
	}
	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("actor_id", actor.ID.String()))
	return task, nil
}

// UpdateTask implements TaskService
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	input TaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.modifiable(ctx, actor, id)
	if err != nil {
		return nil, NewServiceError("task", "update", err)
	}
	if err := s.apply(ctx, task, input, true); err != nil {
		return nil, NewServiceError("task", "update", err)
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.taskStore.Update(ctx, task); err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, NewServiceError("task", "update", err)
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return task, nil
}

// DeleteTask implements TaskService. Subtasks are deleted with their parent.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if _, err := s.modifiable(ctx, actor, id); err != nil {
		return NewServiceError("task", "delete", err)
	}
	if err := s.taskStore.Delete(ctx, id); err != nil {
		return NewServiceError("task", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return nil
}

// modifiable loads the task and checks that actor may change it.
func (s *TaskServiceImpl) modifiable(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var project *domain.Project
	if task.ProjectID != nil {
		project, err = s.projectStore.GetByID(ctx, *task.ProjectID)
		if err != nil && !store.IsNotFoundError(err) {
			return nil, err
		}
	}

	if !access.CanModifyTask(actor, task, project) {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task access denied",
			slog.String("task_id", id.String()),
			slog.String("actor_id", actor.ID.String()))
		return nil, ErrForbidden
	}
	return task, nil
}

func day(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := calendar.Day(*t)
	return &d
}

func invalidReference(field string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s does not exist", store.ErrInvalidEntity, field, id)
}

// apply copies input onto task and checks it against the referenced parent,
// project, module and assignee.
func (s *TaskServiceImpl) apply(ctx context.Context, task *domain.Task, input TaskInput, existing bool) error {
	task.Title = strings.TrimSpace(input.Title)
	task.Description = input.Description
	task.StartDate = day(input.StartDate)
	task.DueDate = day(input.DueDate)
	task.LinkIssue = strings.TrimSpace(input.LinkIssue)
	task.EstimatedHours = input.EstimatedHours
	task.AssignmentID = input.AssignmentID
	task.ProjectID = input.ProjectID
	task.ModuleID = input.ModuleID
	task.ParentID = input.ParentID

	if input.Priority != "" {
		task.Priority = input.Priority
	}

	status := task.Status
	if input.Status != "" {
		status = input.Status
	}
	if input.CompletedAt != nil {
		completed := input.CompletedAt.UTC()
		task.CompletedAt = &completed
	} else if status != domain.TaskStatusDone {
		task.CompletedAt = nil
	}
	task.SetStatus(status, s.now())

	if err := task.Validate(); err != nil {
		return err
	}

	if task.ParentID != nil {
		if err := s.checkParent(ctx, task, existing); err != nil {
			return err
		}
	}

	if task.ModuleID != nil && task.ProjectID == nil {
		return domain.ErrModuleRequiresProject
	}
	if task.ProjectID != nil {
		project, err := s.projectStore.GetByID(ctx, *task.ProjectID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return invalidReference("project", *task.ProjectID)
			}
			return err
		}
		if task.ModuleID != nil {
			if _, ok := project.Module(*task.ModuleID); !ok {
				return domain.NewValidationError("module_id", "module does not belong to the task's project")
			}
		}
	}

	if task.AssignmentID != nil {
		if _, err := s.userStore.GetByID(ctx, *task.AssignmentID); err != nil {
			if store.IsNotFoundError(err) {
				return invalidReference("assignee", *task.AssignmentID)
			}
			return err
		}
	}
	return nil
}

// checkParent enforces the subtask rules. An existing task that already has
// subtasks cannot become a subtask itself.
func (s *TaskServiceImpl) checkParent(ctx context.Context, task *domain.Task, existing bool) error {
	parent, err := s.taskStore.GetByID(ctx, *task.ParentID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return invalidReference("parent task", *task.ParentID)
		}
		return err
	}
	if err := task.ValidateParent(parent); err != nil {
		return err
	}

	if existing {
		children, err := s.taskStore.List(ctx, store.TaskFilter{ParentID: &task.ID})
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return domain.ErrNestedSubtask
		}
	}
	return nil
}
