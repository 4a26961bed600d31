package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/api/middleware"
	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
)

func newTestApplication(t *testing.T, users ...*domain.User) (*application, *mocks.MockProjectStore, *mocks.MockTaskStore) {
	t.Helper()
	log, _ := logger.NewTestLogger()
	userStore := mocks.NewMockUserStore(users...)
	projectStore := mocks.NewMockProjectStore()
	projectStore.Users = userStore
	taskStore := mocks.NewMockTaskStore()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info", ShutdownTimeout: time.Second},
		Auth:   config.AuthConfig{TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 120},
	}
	app := &application{
		config:         cfg,
		logger:         log,
		jwtService:     &mocks.MockJWTService{},
		userService:    service.NewUserService(userStore, &mocks.MockPasswordVerifier{}, nil, "", log),
		projectService: service.NewProjectService(projectStore, userStore, nil, log),
		taskService:    service.NewTaskService(taskStore, projectStore, userStore, nil, log),
		reportService:  service.NewReportService(userStore, projectStore, taskStore, nil, log),
	}
	return app, projectStore, taskStore
}

func serve(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	app, _, _ := newTestApplication(t)
	rec := serve(t, app.setupRouter(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Len(t, rec.Header().Get(middleware.TraceIDHeader), 32)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	ana, err := domain.NewUser("Ana", "ana@example.com", "password123")
	require.NoError(t, err)
	app, projects, tasks := newTestApplication(t, ana)
	router := app.setupRouter()
	token := "access:" + ana.ID.String()

	project, err := domain.NewProject("Apollo", "", &ana.ID, ana.ID)
	require.NoError(t, err)
	projects.Projects[project.ID] = project
	task, err := domain.NewTask(ana.ID, "Launch")
	require.NoError(t, err)
	tasks.Tasks[task.ID] = task

	paths := []string{
		"/api/users",
		"/api/users/" + ana.ID.String(),
		"/api/projects",
		"/api/projects/" + project.ID.String(),
		"/api/tasks",
		"/api/tasks/" + task.ID.String(),
		"/api/reports/workload",
		"/api/reports/timeline",
		"/api/reports/summary",
		"/api/reports/tasks.csv",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serve(t, router, http.MethodGet, path, "").Code)
			assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, path, token).Code)
		})
	}

	rec := serve(t, router, http.MethodGet, "/api/reports/tasks.csv", token)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, http.StatusUnauthorized, serve(t, router, http.MethodGet, "/api/users", "refresh:"+ana.ID.String()).Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	app, _, _ := newTestApplication(t)
	assert.Equal(t, http.StatusNotFound, serve(t, app.setupRouter(), http.MethodGet, "/api/cards", "").Code)
}
