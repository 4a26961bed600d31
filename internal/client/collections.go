package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// Notice records a collection that could not be loaded.
type Notice struct {
	Resource string
	Err      error
}

// String is the user-facing message, e.g. "failed to load users".
func (n Notice) String() string {
	return "failed to load " + n.Resource
}

// Snapshot is every collection a report needs.
type Snapshot struct {
	Users    []domain.User
	Projects []domain.Project
	Tasks    []domain.Task
	Notices  []Notice
}

// TaskQuery narrows the task list. Empty fields match everything.
type TaskQuery struct {
	AssignmentID *uuid.UUID
	ProjectID    *uuid.UUID
	Status       domain.TaskStatus
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.AssignmentID != nil {
		v.Set("assignment_id", q.AssignmentID.String())
	}
	if q.ProjectID != nil {
		v.Set("project_id", q.ProjectID.String())
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

// taskWire is the API's task shape, with dates as YYYY-MM-DD.
type taskWire struct {
	domain.Task
	StartDate *string `json:"start_date"`
	DueDate   *string `json:"due_date"`
}

func parseWireDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, err := calendar.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}

func (c *Client) notice(ctx context.Context, resource string, err error) *Notice {
	c.logger.WarnContext(ctx, "collection fetch failed",
		slog.String("resource", resource),
		slog.String("error", err.Error()),
		slog.String("breaker_state", c.breaker.State().String()))
	return &Notice{Resource: resource, Err: err}
}

// Users lists every user. On failure the list is empty and the notice is set.
func (c *Client) Users(ctx context.Context) ([]domain.User, *Notice) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return []domain.User{}, c.notice(ctx, "users", err)
	}
	return users, nil
}

// Projects lists every project with members and modules.
func (c *Client) Projects(ctx context.Context) ([]domain.Project, *Notice) {
	var projects []domain.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, nil, &projects); err != nil {
		return []domain.Project{}, c.notice(ctx, "projects", err)
	}
	return projects, nil
}

// Tasks lists the tasks matching q. Unparseable dates are dropped, which the
// reports treat as missing.
func (c *Client) Tasks(ctx context.Context, q TaskQuery) ([]domain.Task, *Notice) {
	var wire []taskWire
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), nil, &wire); err != nil {
		return []domain.Task{}, c.notice(ctx, "tasks", err)
	}
	tasks := make([]domain.Task, 0, len(wire))
	for _, w := range wire {
		t := w.Task
		t.StartDate = parseWireDate(w.StartDate)
		t.DueDate = parseWireDate(w.DueDate)
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Snapshot loads users, projects and tasks. It always returns usable
// collections; failures are listed in Notices.
func (c *Client) Snapshot(ctx context.Context) Snapshot {
	var snap Snapshot
	var n *Notice
	if snap.Users, n = c.Users(ctx); n != nil {
		snap.Notices = append(snap.Notices, *n)
	}
	if snap.Projects, n = c.Projects(ctx); n != nil {
		snap.Notices = append(snap.Notices, *n)
	}
	if snap.Tasks, n = c.Tasks(ctx, TaskQuery{}); n != nil {
		snap.Notices = append(snap.Notices, *n)
	}
	return snap
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	return resp.Token, nil
}
