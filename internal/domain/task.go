package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// Task validation errors.
var (
	ErrEmptyTaskID           = NewValidationError("id", "task ID cannot be empty")
	ErrEmptyTaskTitle        = NewValidationError("title", "cannot be empty")
	ErrTaskTitleTooLong      = NewValidationError("title", "must be at most 255 characters")
	ErrLinkIssueTooLong      = NewValidationError("link_issue", "must be at most 255 characters")
	ErrInvalidTaskStatus     = NewValidationError("status", "must be todo, in_progress or done")
	ErrInvalidTaskPriority   = NewValidationError("priority", "must be low, medium or high")
	ErrNegativeHours         = NewValidationError("estimated_hours", "must be at least 0")
	ErrHoursTooLarge         = NewValidationError("estimated_hours", "must be at most 999.99")
	ErrHoursPrecision        = NewValidationError("estimated_hours", "must have at most two decimal places")
	ErrDueBeforeStart        = NewValidationError("due_date", "must not be before start_date")
	ErrModuleRequiresProject = NewValidationError("module_id", "a task with a module must belong to a project")
	ErrSelfParent            = NewValidationError("parent_id", "a task cannot be its own parent")
	ErrNestedSubtask         = NewValidationError("parent_id", "subtasks cannot have subtasks")
	ErrSubtaskStartsEarly    = NewValidationError("start_date", "must not be before the parent task's start date")
	ErrSubtaskDueLate        = NewValidationError("due_date", "must not be after the parent task's due date")
	ErrSubtaskProject        = NewValidationError("project_id", "must match the parent task's project")
)

// MaxEstimatedHours is the largest estimate the tasks table stores.
const MaxEstimatedHours = 999.99

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists the statuses in workflow order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusDone
}

// TaskPriority ranks tasks.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

const maxLinkIssueLength = 255

// Task is a unit of work. Dates are calendar dates at UTC midnight. Optional
// references are nil when unset; ModuleID is only meaningful together with
// ProjectID.
type Task struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	StartDate      *time.Time   `json:"start_date"`
	DueDate        *time.Time   `json:"due_date"`
	LinkIssue      string       `json:"link_issue"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	CompletedAt    *time.Time   `json:"completed_at"`
	EstimatedHours *float64     `json:"estimated_hours"`
	CreatedBy      uuid.UUID    `json:"created_by"`
	AssignmentID   *uuid.UUID   `json:"assignment_id"`
	ProjectID      *uuid.UUID   `json:"project_id"`
	ModuleID       *uuid.UUID   `json:"module_id"`
	ParentID       *uuid.UUID   `json:"parent_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewTask creates a todo, medium-priority task. Optional fields are set by
// the caller before calling Validate again.
func NewTask(createdBy uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Priority:  TaskPriorityMedium,
		Status:    TaskStatusTodo,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks field-level invariants. Relations to other tasks and to
// project modules are checked by ValidateParent and the task service.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.CreatedBy == uuid.Nil {
		return ErrEmptyUserID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > maxNameLength {
		return ErrTaskTitleTooLong
	}
	if len(t.LinkIssue) > maxLinkIssueLength {
		return ErrLinkIssueTooLong
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	if t.EstimatedHours != nil {
		if err := validateHours(*t.EstimatedHours); err != nil {
			return err
		}
	}
	if t.StartDate != nil && t.DueDate != nil && t.DueDate.Before(*t.StartDate) {
		return ErrDueBeforeStart
	}
	if t.ModuleID != nil && t.ProjectID == nil {
		return ErrModuleRequiresProject
	}
	if t.ParentID != nil && *t.ParentID == t.ID {
		return ErrSelfParent
	}
	return nil
}

// ValidateParent checks the subtask rules against parent: one level of
// nesting, dates inside the parent's range where both sides are known, and the
// same project. A subtask without a project inherits the parent's.
func (t *Task) ValidateParent(parent *Task) error {
	if parent.ParentID != nil {
		return ErrNestedSubtask
	}
	if t.StartDate != nil && parent.StartDate != nil && t.StartDate.Before(*parent.StartDate) {
		return ErrSubtaskStartsEarly
	}
	if t.DueDate != nil && parent.DueDate != nil && t.DueDate.After(*parent.DueDate) {
		return ErrSubtaskDueLate
	}
	if t.ProjectID == nil && parent.ProjectID != nil {
		projectID := *parent.ProjectID
		t.ProjectID = &projectID
	}
	if t.ProjectID != nil && parent.ProjectID != nil && *t.ProjectID != *parent.ProjectID {
		return ErrSubtaskProject
	}
	return nil
}

// SetStatus moves the task to status. Entering done stamps CompletedAt when it
// is not already set.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	t.Status = status
	if status == TaskStatusDone && t.CompletedAt == nil {
		completed := now.UTC()
		t.CompletedAt = &completed
	}
}

// Hours returns the estimate, treating a missing estimate as zero.
func (t *Task) Hours() float64 {
	if t.EstimatedHours == nil {
		return 0
	}
	return *t.EstimatedHours
}

// IsAssignedTo reports whether the task is assigned to userID.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignmentID != nil && *t.AssignmentID == userID
}

// InProject reports whether the task belongs to projectID.
func (t *Task) InProject(projectID uuid.UUID) bool {
	return t.ProjectID != nil && *t.ProjectID == projectID
}

// IsOverdue reports whether an unfinished task's due date is before today.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusDone && t.DueDate != nil && t.DueDate.Before(calendar.Day(now))
}

// IsDueToday reports whether an unfinished task is due on now's date.
func (t *Task) IsDueToday(now time.Time) bool {
	return t.Status != TaskStatusDone && t.DueDate != nil && t.DueDate.Equal(calendar.Day(now))
}

// validateHours keeps estimates within NUMERIC(5, 2) so nothing is rounded or
// rejected on write.
func validateHours(h float64) error {
	switch {
	case math.IsNaN(h) || math.IsInf(h, 0):
		return ErrHoursTooLarge
	case h < 0:
		return ErrNegativeHours
	case h > MaxEstimatedHours:
		return ErrHoursTooLarge
	}
	cents := h * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return ErrHoursPrecision
	}
	return nil
}
