package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListFn       func(ctx context.Context) ([]domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	Users map[uuid.UUID]*domain.User
}

// NewMockUserStore creates an empty mock store, optionally seeded.
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{Users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements store.UserStore. The plaintext password is moved into
// HashedPassword unhashed, prefixed so tests can tell the two apart.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	if user.Password != "" {
		user.HashedPassword = "hashed:" + user.Password
		user.Password = ""
	}
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

// GetByID implements store.UserStore
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// GetByEmail implements store.UserStore
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore, newest first.
func (m *MockUserStore) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// Update implements store.UserStore
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for _, u := range m.Users {
		if u.Email == user.Email && u.ID != user.ID {
			return store.ErrEmailExists
		}
	}
	if user.Password != "" {
		user.HashedPassword = "hashed:" + user.Password
		user.Password = ""
	}
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

// Delete implements store.UserStore
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	return nil
}

// WithTx implements store.UserStore
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}
