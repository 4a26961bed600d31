package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
)

var testNow = time.Date(2025, time.June, 18, 14, 30, 0, 0, time.UTC)

// testEnv wires real services over the in-memory mock stores.
type testEnv struct {
	users    *mocks.MockUserStore
	projects *mocks.MockProjectStore
	tasks    *mocks.MockTaskStore
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	log      *slog.Logger
	logs     *logger.TestLogBuffer

	userService    service.UserService
	projectService service.ProjectService
	taskService    service.TaskService
	reportService  service.ReportService
}

func newTestEnv(t *testing.T, users ...*domain.User) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	log, buf := logger.NewTestLogger()
	userStore := mocks.NewMockUserStore(users...)
	projectStore := mocks.NewMockProjectStore()
	projectStore.Users = userStore
	taskStore := mocks.NewMockTaskStore()
	clock := func() time.Time { return testNow }

	return &testEnv{
		users:          userStore,
		projects:       projectStore,
		tasks:          taskStore,
		db:             db,
		sqlMock:        mock,
		log:            log,
		logs:           buf,
		userService:    service.NewUserService(userStore, &mocks.MockPasswordVerifier{}, db, "", log),
		projectService: service.NewProjectService(projectStore, userStore, db, log),
		taskService:    service.NewTaskService(taskStore, projectStore, userStore, clock, log),
		reportService:  service.NewReportService(userStore, projectStore, taskStore, clock, log),
	}
}

// testUser builds a stored-looking user following the mock hash convention.
func testUser(t *testing.T, name, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email, "password123")
	require.NoError(t, err)
	user.Role = role
	user.HashedPassword = "hashed:" + user.Password
	user.Password = ""
	return user
}

// addProject stores a project owned by owner, who is also its project admin.
func (e *testEnv) addProject(t *testing.T, name string, owner *domain.User) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(name, "", &owner.ID, owner.ID)
	require.NoError(t, err)
	project.Members = []domain.ProjectMember{{
		ProjectID: project.ID,
		UserID:    owner.ID,
		Name:      owner.Name,
		Email:     owner.Email,
		Role:      domain.MemberRoleAdmin,
	}}
	project.Modules = []domain.ProjectModule{}
	e.projects.Projects[project.ID] = project
	return project
}

// addTask stores a task created by creator.
func (e *testEnv) addTask(t *testing.T, title string, creator *domain.User, mutate func(*domain.Task)) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(creator.ID, title)
	require.NoError(t, err)
	if mutate != nil {
		mutate(task)
	}
	e.tasks.Tasks[task.ID] = task
	return task
}

// newRequest builds a request with an optional JSON body, authenticated actor
// and chi URL parameters.
func newRequest(
	t *testing.T,
	method, target string,
	body interface{},
	actor *domain.User,
	params map[string]string,
) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if actor != nil {
		ctx = shared.WithUserID(ctx, actor.ID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

// decodeBody unmarshals a JSON response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// assertError checks the status and error message of a failed response.
func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	var resp shared.ErrorResponse
	decodeBody(t, rec, &resp)
	if message != "" {
		assert.Equal(t, message, resp.Error)
	}
}
