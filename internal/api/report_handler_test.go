package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/timeline"
	"github.com/phrazzld/taskhub/internal/domain/workload"
	"github.com/phrazzld/taskhub/internal/store"
)

// newReportEnv seeds Ana with 45h of active work due in the week of
// 16 June 2025 and Ben with one finished task.
func newReportEnv(t *testing.T) (*testEnv, *ReportHandler, *domain.Project) {
	t.Helper()
	ana := testUser(t, "Ana", "ana@example.com", domain.UserRoleMember)
	ben := testUser(t, "Ben", "ben@example.com", domain.UserRoleMember)
	env := newTestEnv(t, ana, ben)
	project := env.addProject(t, "Apollo", ana)

	seed := func(title string, who *domain.User, status domain.TaskStatus, h float64, due time.Time) {
		env.addTask(t, title, ana, func(task *domain.Task) {
			task.AssignmentID = &who.ID
			task.ProjectID = &project.ID
			task.EstimatedHours = &h
			task.DueDate = &due
			task.SetStatus(status, testNow)
		})
	}
	seed("Design", ana, domain.TaskStatusInProgress, 30, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	seed("Review", ana, domain.TaskStatusInProgress, 15, time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC))
	seed("Deploy", ben, domain.TaskStatusDone, 8, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	return env, NewReportHandler(env.reportService, env.log), project
}

type dashboardBody struct {
	Cards []struct {
		User       struct{ Name string } `json:"user"`
		Overloaded bool                  `json:"overloaded"`
	} `json:"cards"`
	HasOverload bool `json:"has_overload"`
}

func TestWorkloadReport(t *testing.T) {
	t.Parallel()

	env, h, _ := newReportEnv(t)

	get := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Workload(rec, newRequest(t, http.MethodGet, "/api/reports/workload"+query, nil, nil, nil))
		return rec
	}

	rec := get("")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body dashboardBody
	decodeBody(t, rec, &body)
	require.Len(t, body.Cards, 2)
	assert.True(t, body.HasOverload)
	assert.Equal(t, "Ana", body.Cards[0].User.Name)
	assert.True(t, body.Cards[0].Overloaded)

	rec = get("?availability=available")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = dashboardBody{}
	decodeBody(t, rec, &body)
	require.Len(t, body.Cards, 1)
	assert.Equal(t, "Ben", body.Cards[0].User.Name)

	rec = get("?year=0&month=0&week=0")
	require.Equal(t, http.StatusOK, rec.Code, "zero leaves the filter unset")
	body = dashboardBody{}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Cards, 2)
	assert.True(t, body.HasOverload)

	tests := []struct {
		query    string
		errorMsg string
	}{
		{"?month=13", "Invalid month: must be between 1 and 12"},
		{"?month=-1", "Invalid month: must be between 1 and 12"},
		{"?year=10000", "Invalid year: must be between 1 and 9999"},
		{"?week=7", "Invalid week: must be between 1 and 6"},
		{"?availability=idle", "Invalid availability: must be one of available busy overload"},
		{"?user_id=abc", "Invalid user_id: has invalid format"},
		{"?status=paused", "Invalid status: must be todo, in_progress or done"},
	}
	for _, tt := range tests {
		assertError(t, get(tt.query), http.StatusBadRequest, tt.errorMsg)
	}

	env.tasks.ListFn = func(context.Context, store.TaskFilter) ([]domain.Task, error) {
		return nil, errors.New("connection reset")
	}
	assertError(t, get(""), http.StatusInternalServerError, "Failed to build workload dashboard")
}

func TestWorkloadView(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	req := newRequest(t, http.MethodGet,
		"/api/reports/workload?user_id="+userID.String()+"&year=2025&month=6&week=3&availability=Overload",
		nil, nil, nil)

	view, err := workloadView(req)
	require.NoError(t, err)
	require.NotNil(t, view.UserID)
	assert.Equal(t, userID, *view.UserID)
	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, time.June, view.Month)
	assert.Equal(t, 3, view.WeekOfMonth)
	assert.Equal(t, workload.BucketOverload, view.Availability)
}

func TestTimelineView(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/api/reports/timeline?granularity=weekly&module_id=none", nil, nil, nil)
	view, err := timelineView(req)
	require.NoError(t, err)
	assert.Equal(t, timeline.Weekly, view.Granularity)
	require.NotNil(t, view.ModuleID)
	assert.Equal(t, uuid.Nil, *view.ModuleID)

	req = newRequest(t, http.MethodGet, "/api/reports/timeline", nil, nil, nil)
	view, err = timelineView(req)
	require.NoError(t, err)
	assert.Equal(t, timeline.DefaultGranularity, view.Granularity)
	assert.Nil(t, view.ModuleID)

	req = newRequest(t, http.MethodGet, "/api/reports/timeline?granularity=daily", nil, nil, nil)
	_, err = timelineView(req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTimelineReport(t *testing.T) {
	t.Parallel()

	_, h, project := newReportEnv(t)

	rec := httptest.NewRecorder()
	h.Timeline(rec, newRequest(t, http.MethodGet, "/api/reports/timeline?year=2025", nil, nil, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Columns      []timeline.Column `json:"columns"`
		CurrentIndex int               `json:"current_index"`
		Projects     []struct {
			ProjectID uuid.UUID `json:"project_id"`
			Progress  int       `json:"progress"`
		} `json:"projects"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Columns, 12)
	assert.Equal(t, 5, body.CurrentIndex)
	require.Len(t, body.Projects, 1)
	assert.Equal(t, project.ID, body.Projects[0].ProjectID)
	assert.Equal(t, 33, body.Projects[0].Progress)
}

func TestSummaryReport(t *testing.T) {
	t.Parallel()

	_, h, _ := newReportEnv(t)

	rec := httptest.NewRecorder()
	h.Summary(rec, newRequest(t, http.MethodGet, "/api/reports/summary?name=an", nil, nil, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Year        int `json:"year"`
		Month       int `json:"month"`
		MemberCount int `json:"member_count"`
		Members     []struct {
			Name string `json:"name"`
		} `json:"members"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 2025, body.Year)
	assert.Equal(t, 6, body.Month)
	assert.Equal(t, 2, body.MemberCount)
	require.Len(t, body.Members, 1)
	assert.Equal(t, "Ana", body.Members[0].Name)

	rec = httptest.NewRecorder()
	h.Summary(rec, newRequest(t, http.MethodGet, "/api/reports/summary?month=0", nil, nil, nil))
	require.Equal(t, http.StatusOK, rec.Code, "month=0 means the current month")

	rec = httptest.NewRecorder()
	h.Summary(rec, newRequest(t, http.MethodGet, "/api/reports/summary?project_id=x", nil, nil, nil))
	assertError(t, rec, http.StatusBadRequest, "Invalid project_id: has invalid format")
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	_, h, _ := newReportEnv(t)

	rec := httptest.NewRecorder()
	h.ExportCSV(rec, newRequest(t, http.MethodGet, "/api/reports/tasks.csv", nil, nil, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tasks.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Task,Project,Assigned,Status,Due Date", lines[0])
	assert.Contains(t, lines, "Deploy,Apollo,Ben,done,2025-06-10")
}
