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

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn    func(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates an empty mock store, optionally seeded.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	m := &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
	for _, t := range tasks {
		m.Tasks[t.ID] = t
	}
	return m
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func matchesFilter(t *domain.Task, f store.TaskFilter) bool {
	if f.AssignmentID != nil && (t.AssignmentID == nil || *t.AssignmentID != *f.AssignmentID) {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if f.ParentID != nil && (t.ParentID == nil || *t.ParentID != *f.ParentID) {
		return false
	}
	return f.Status == "" || t.Status == f.Status
}

// List implements store.TaskStore, newest first.
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []domain.Task{}
	for _, t := range m.Tasks {
		if matchesFilter(t, filter) {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

// Update implements store.TaskStore
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// Delete implements store.TaskStore. Subtasks go with their parent.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	for tid, t := range m.Tasks {
		if t.ParentID != nil && *t.ParentID == id {
			delete(m.Tasks, tid)
		}
	}
	return nil
}

// WithTx implements store.TaskStore
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}
