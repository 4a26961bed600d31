package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID       uuid.UUID     `json:"user_id"`
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest is the payload of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse carries a new token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// CreateUserRequest is the payload of POST /users.
type CreateUserRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Role                 string `json:"role"                  validate:"omitempty,oneof=admin member"`
}

// UpdateUserRequest is the payload of PUT /users/{id}. Omitted fields are
// left unchanged; a new password needs a matching confirmation.
type UpdateUserRequest struct {
	Name                 *string `json:"name"                  validate:"omitempty,min=1,max=255"`
	Email                *string `json:"email"                 validate:"omitempty,email"`
	Password             *string `json:"password"              validate:"omitempty,min=6,max=72"`
	PasswordConfirmation *string `json:"password_confirmation"`
	Role                 *string `json:"role"                  validate:"omitempty,oneof=admin member"`
}

// Validate runs the tag rules and checks the password confirmation.
func (r UpdateUserRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Password != nil && (r.PasswordConfirmation == nil || *r.PasswordConfirmation != *r.Password) {
		return domain.NewValidationError("password_confirmation", "does not match password")
	}
	return nil
}

// ProjectRequest is the payload of POST /projects.
type ProjectRequest struct {
	Name    string     `json:"name"     validate:"required,max=255"`
	Desc    string     `json:"desc"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

// UpdateProjectRequest is the payload of PUT /projects/{id}.
type UpdateProjectRequest struct {
	Name    *string    `json:"name"     validate:"omitempty,min=1,max=255"`
	Desc    *string    `json:"desc"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

// AddMemberRequest is the payload of POST /projects/{id}/members.
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role"    validate:"omitempty,oneof=admin member viewer developer reporter qa"`
}

// UpdateMemberRequest is the payload of PUT /projects/{id}/members/{user_id}.
type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer developer reporter qa"`
}

// AddMemberResponse reports whether the membership was created.
type AddMemberResponse struct {
	Added   bool            `json:"added"`
	Project *domain.Project `json:"project"`
}

// ModuleRequest is the payload for creating or renaming a module.
type ModuleRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Desc string `json:"desc"`
}

// TaskRequest is the payload of POST /tasks and PUT /tasks/{id}. Dates use
// YYYY-MM-DD.
type TaskRequest struct {
	Title          string     `json:"title"           validate:"required,max=255"`
	Description    string     `json:"description"`
	StartDate      *string    `json:"start_date"      validate:"omitempty,datetime=2006-01-02"`
	DueDate        *string    `json:"due_date"        validate:"omitempty,datetime=2006-01-02"`
	LinkIssue      string     `json:"link_issue"      validate:"max=255"`
	Priority       string     `json:"priority"        validate:"omitempty,oneof=low medium high"`
	Status         string     `json:"status"          validate:"omitempty,oneof=todo in_progress done"`
	CompletedAt    *time.Time `json:"completed_at"`
	EstimatedHours *float64   `json:"estimated_hours" validate:"omitempty,gte=0,lte=999.99"`
	AssignmentID   *uuid.UUID `json:"assignment_id"`
	ProjectID      *uuid.UUID `json:"project_id"`
	ModuleID       *uuid.UUID `json:"module_id"`
	ParentID       *uuid.UUID `json:"parent_id"`
}

// TaskResponse is the public view of a task with dates as YYYY-MM-DD.
type TaskResponse struct {
	ID             uuid.UUID           `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	StartDate      *string             `json:"start_date"`
	DueDate        *string             `json:"due_date"`
	LinkIssue      string              `json:"link_issue"`
	Priority       domain.TaskPriority `json:"priority"`
	Status         domain.TaskStatus   `json:"status"`
	CompletedAt    *time.Time          `json:"completed_at"`
	EstimatedHours *float64            `json:"estimated_hours"`
	CreatedBy      uuid.UUID           `json:"created_by"`
	AssignmentID   *uuid.UUID          `json:"assignment_id"`
	ProjectID      *uuid.UUID          `json:"project_id"`
	ModuleID       *uuid.UUID          `json:"module_id"`
	ParentID       *uuid.UUID          `json:"parent_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := calendar.FormatDate(t)
	return &s
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		StartDate:      formatDatePtr(t.StartDate),
		DueDate:        formatDatePtr(t.DueDate),
		LinkIssue:      t.LinkIssue,
		Priority:       t.Priority,
		Status:         t.Status,
		CompletedAt:    t.CompletedAt,
		EstimatedHours: t.EstimatedHours,
		CreatedBy:      t.CreatedBy,
		AssignmentID:   t.AssignmentID,
		ProjectID:      t.ProjectID,
		ModuleID:       t.ModuleID,
		ParentID:       t.ParentID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// MessageResponse is returned by deletes.
type MessageResponse struct {
	Message string `json:"message"`
}
