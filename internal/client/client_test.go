package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	cfg.Token = "access-token"
	cfg.BreakerTimeout = time.Minute
	cfg.MaxFailures = 2

	log, _ := logger.NewTestLogger()
	c, err := New(cfg, log)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BaseURL = " http://api.example.com/ "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://api.example.com", cfg.BaseURL)

	cfg.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxFailures = 0
	assert.Error(t, cfg.Validate())
}

func TestUsersSendsTokenAndDecodes(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": id, "name": "Ana", "email": "ana@example.com", "role": "admin"},
		})
	}))

	users, notice := c.Users(context.Background())
	require.Nil(t, notice)
	require.Len(t, users, 1)
	assert.Equal(t, id, users[0].ID)
	assert.True(t, users[0].IsAdmin())
}

func TestTasksParsesDatesAndQuery(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, projectID.String(), r.URL.Query().Get("project_id"))
		assert.Equal(t, "done", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": uuid.New(), "title": "Ship", "status": "done", "due_date": "2025-06-20", "start_date": nil},
			{"id": uuid.New(), "title": "Odd", "status": "done", "due_date": "20/06/2025"},
		})
	}))

	tasks, notice := c.Tasks(context.Background(), TaskQuery{ProjectID: &projectID, Status: domain.TaskStatusDone})
	require.Nil(t, notice)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), *tasks[0].DueDate)
	assert.Nil(t, tasks[0].StartDate)
	assert.Nil(t, tasks[1].DueDate, "unparseable dates are treated as missing")
}

func TestFailuresDegradeToEmptyWithNotice(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		case "/api/projects":
			writeJSON(w, http.StatusOK, []interface{}{})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		}
	}))

	snap := c.Snapshot(context.Background())
	assert.NotNil(t, snap.Users)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Projects)
	assert.Empty(t, snap.Tasks)
	require.Len(t, snap.Notices, 2)
	assert.Equal(t, "failed to load users", snap.Notices[0].String())
	assert.Equal(t, "failed to load tasks", snap.Notices[1].String())

	var apiErr *APIError
	require.ErrorAs(t, snap.Notices[0].Err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid token", apiErr.Message)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, notice := c.Tasks(ctx, TaskQuery{})
		require.NotNil(t, notice)
	}
	assert.Equal(t, gobreaker.StateOpen, c.State())

	_, notice := c.Tasks(ctx, TaskQuery{})
	require.NotNil(t, notice)
	assert.ErrorIs(t, notice.Err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load(), "open breaker short-circuits requests")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "nope"})
	}))

	for i := 0; i < 5; i++ {
		_, notice := c.Projects(context.Background())
		require.NotNil(t, notice)
	}
	assert.Equal(t, gobreaker.StateClosed, c.State())
}

func TestLogin(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok"})
	}))

	token, err := c.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = c.Login(context.Background(), "ana@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}
