package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
)

// MockProjectStore implements store.ProjectStore for testing. Member names
// are resolved through Users when it is set.
type MockProjectStore struct {
	CreateFn    func(ctx context.Context, project *domain.Project) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListFn      func(ctx context.Context) ([]domain.Project, error)
	UpdateFn    func(ctx context.Context, project *domain.Project) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error
	AddMemberFn func(ctx context.Context, projectID, userID uuid.UUID, role domain.MemberRole) (bool, error)

	Users *MockUserStore

	mu       sync.Mutex
	Projects map[uuid.UUID]*domain.Project
}

// NewMockProjectStore creates an empty mock store, optionally seeded.
func NewMockProjectStore(projects ...*domain.Project) *MockProjectStore {
	m := &MockProjectStore{Projects: make(map[uuid.UUID]*domain.Project)}
	for _, p := range projects {
		m.Projects[p.ID] = p
	}
	return m
}

var _ store.ProjectStore = (*MockProjectStore)(nil)

func cloneProject(p *domain.Project) *domain.Project {
	copied := *p
	copied.Members = append([]domain.ProjectMember{}, p.Members...)
	copied.Modules = append([]domain.ProjectModule{}, p.Modules...)
	return &copied
}

// Create implements store.ProjectStore
func (m *MockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	if err := project.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Projects[project.ID] = cloneProject(project)
	return nil
}

// GetByID implements store.ProjectStore
func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

// List implements store.ProjectStore, newest first.
func (m *MockProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	projects := make([]domain.Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		projects = append(projects, *cloneProject(p))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

// Update implements store.ProjectStore
func (m *MockProjectStore) Update(ctx context.Context, project *domain.Project) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, project)
	}
	if err := project.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Projects[project.ID]
	if !ok {
		return store.ErrProjectNotFound
	}
	existing.Name = project.Name
	existing.Desc = project.Desc
	existing.OwnerID = project.OwnerID
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.ProjectStore
func (m *MockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(m.Projects, id)
	return nil
}

// AddMember implements store.ProjectStore
func (m *MockProjectStore) AddMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) (bool, error) {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, projectID, userID, role)
	}
	var user *domain.User
	if m.Users != nil {
		u, err := m.Users.GetByID(ctx, userID)
		if err != nil {
			return false, store.ErrInvalidEntity
		}
		user = u
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok {
		return false, store.ErrInvalidEntity
	}
	if _, exists := p.Member(userID); exists {
		return false, nil
	}
	member := domain.ProjectMember{ProjectID: projectID, UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	if user != nil {
		member.Name = user.Name
		member.Email = user.Email
	}
	p.Members = append(p.Members, member)
	return true, nil
}

// UpdateMemberRole implements store.ProjectStore
func (m *MockProjectStore) UpdateMemberRole(
	ctx context.Context,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok {
		return store.ErrMemberNotFound
	}
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			p.Members[i].Role = role
			return nil
		}
	}
	return store.ErrMemberNotFound
}

// RemoveMember implements store.ProjectStore
func (m *MockProjectStore) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok {
		return store.ErrMemberNotFound
	}
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			return nil
		}
	}
	return store.ErrMemberNotFound
}

// CreateModule implements store.ProjectStore
func (m *MockProjectStore) CreateModule(ctx context.Context, module *domain.ProjectModule) error {
	if err := module.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[module.ProjectID]
	if !ok {
		return store.ErrInvalidEntity
	}
	p.Modules = append(p.Modules, *module)
	return nil
}

// UpdateModule implements store.ProjectStore
func (m *MockProjectStore) UpdateModule(ctx context.Context, module *domain.ProjectModule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[module.ProjectID]
	if !ok {
		return store.ErrModuleNotFound
	}
	for i := range p.Modules {
		if p.Modules[i].ID == module.ID {
			p.Modules[i].Name = module.Name
			p.Modules[i].Desc = module.Desc
			return nil
		}
	}
	return store.ErrModuleNotFound
}

// DeleteModule implements store.ProjectStore
func (m *MockProjectStore) DeleteModule(ctx context.Context, projectID, moduleID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok {
		return store.ErrModuleNotFound
	}
	for i := range p.Modules {
		if p.Modules[i].ID == moduleID {
			p.Modules = append(p.Modules[:i], p.Modules[i+1:]...)
			return nil
		}
	}
	return store.ErrModuleNotFound
}

// WithTx implements store.ProjectStore
func (m *MockProjectStore) WithTx(*sql.Tx) store.ProjectStore {
	return m
}
