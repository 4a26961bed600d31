package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project validation errors.
var (
	ErrEmptyProjectID       = NewValidationError("id", "project ID cannot be empty")
	ErrEmptyProjectName     = NewValidationError("name", "cannot be empty")
	ErrProjectNameTooLong   = NewValidationError("name", "must be at most 255 characters")
	ErrInvalidMemberRole    = NewValidationError("role", "must be one of admin, member, viewer, developer, reporter, qa")
	ErrEmptyModuleName      = NewValidationError("name", "cannot be empty")
	ErrModuleNameTooLong    = NewValidationError("name", "must be at most 255 characters")
	ErrModuleWithoutProject = NewValidationError("project_id", "module must belong to a project")
)

// MemberRole is a user's role inside one project.
type MemberRole string

const (
	MemberRoleAdmin     MemberRole = "admin"
	MemberRoleMember    MemberRole = "member"
	MemberRoleViewer    MemberRole = "viewer"
	MemberRoleDeveloper MemberRole = "developer"
	MemberRoleReporter  MemberRole = "reporter"
	MemberRoleQA        MemberRole = "qa"
)

// DefaultMemberRole is applied when a member is added without a role.
const DefaultMemberRole = MemberRoleMember

// MemberRoles lists every project role in display order.
var MemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleMember,
	MemberRoleViewer,
	MemberRoleDeveloper,
	MemberRoleReporter,
	MemberRoleQA,
}

// Valid reports whether r is a known project role.
func (r MemberRole) Valid() bool {
	for _, known := range MemberRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseMemberRole converts user input into a role, defaulting empty input.
func ParseMemberRole(s string) (MemberRole, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultMemberRole, nil
	}
	role := MemberRole(s)
	if !role.Valid() {
		return "", ErrInvalidMemberRole
	}
	return role, nil
}

// ProjectMember links a user to a project with a role. Name and Email are
// denormalized from the user for listing.
type ProjectMember struct {
	ProjectID uuid.UUID  `json:"project_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      MemberRole `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// ProjectModule is a named sub-area of a project that tasks can be grouped under.
type ProjectModule struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProjectModule creates a validated module for a project.
func NewProjectModule(projectID uuid.UUID, name, desc string) (*ProjectModule, error) {
	now := time.Now().UTC()
	module := &ProjectModule{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
		Desc:      desc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := module.Validate(); err != nil {
		return nil, err
	}
	return module, nil
}

// Validate checks the module's fields.
func (m *ProjectModule) Validate() error {
	if m.ID == uuid.Nil {
		return NewValidationError("id", "module ID cannot be empty")
	}
	if m.ProjectID == uuid.Nil {
		return ErrModuleWithoutProject
	}
	if m.Name == "" {
		return ErrEmptyModuleName
	}
	if len(m.Name) > maxNameLength {
		return ErrModuleNameTooLong
	}
	return nil
}

// Project groups tasks. Owner and CreatedBy are optional because users can be
// deleted out from under a project.
type Project struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Desc      string          `json:"desc"`
	OwnerID   *uuid.UUID      `json:"owner_id"`
	CreatedBy *uuid.UUID      `json:"created_by"`
	Members   []ProjectMember `json:"members"`
	Modules   []ProjectModule `json:"modules"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewProject creates a validated project. A nil owner leaves the project unowned.
func NewProject(name, desc string, ownerID *uuid.UUID, createdBy uuid.UUID) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Desc:      desc,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if createdBy != uuid.Nil {
		project.CreatedBy = &createdBy
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// Validate checks the project's own fields; members and modules validate separately.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if len(p.Name) > maxNameLength {
		return ErrProjectNameTooLong
	}
	return nil
}

// IsOwner reports whether userID owns the project.
func (p *Project) IsOwner(userID uuid.UUID) bool {
	return p.OwnerID != nil && *p.OwnerID == userID
}

// Member looks up a membership by user.
func (p *Project) Member(userID uuid.UUID) (ProjectMember, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return ProjectMember{}, false
}

// Module looks up a module by ID.
func (p *Project) Module(moduleID uuid.UUID) (ProjectModule, bool) {
	for _, m := range p.Modules {
		if m.ID == moduleID {
			return m, true
		}
	}
	return ProjectModule{}, false
}
