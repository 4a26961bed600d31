package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/client"
	"github.com/phrazzld/taskhub/internal/domain"
)

var testNow = time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC)

type fakeAPI struct {
	snapshot  client.Snapshot
	token     string
	loginErr  error
	lastEmail string
}

func (f *fakeAPI) Snapshot(ctx context.Context) client.Snapshot {
	return f.snapshot
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	f.lastEmail = email
	return f.token, f.loginErr
}

func day(m time.Month, d int) *time.Time {
	t := time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func hours(h float64) *float64 { return &h }

// fixture: Ana carries 45h in progress this week on Apollo, Ben finished 8h.
func fixture() client.Snapshot {
	ana := domain.User{ID: uuid.New(), Name: "Ana", Role: domain.UserRoleMember}
	ben := domain.User{ID: uuid.New(), Name: "Ben", Role: domain.UserRoleMember}
	project := domain.Project{ID: uuid.New(), Name: "Apollo"}

	return client.Snapshot{
		Users:    []domain.User{ana, ben},
		Projects: []domain.Project{project},
		Tasks: []domain.Task{
			{
				ID: uuid.New(), Title: "Launch", Status: domain.TaskStatusInProgress,
				StartDate: day(time.June, 16), DueDate: day(time.June, 20), EstimatedHours: hours(45),
				AssignmentID: &ana.ID, ProjectID: &project.ID, CreatedAt: testNow, UpdatedAt: testNow,
			},
			{
				ID: uuid.New(), Title: "Review", Status: domain.TaskStatusDone,
				StartDate: day(time.June, 9), DueDate: day(time.June, 10), EstimatedHours: hours(8),
				AssignmentID: &ben.ID, ProjectID: &project.ID, CreatedAt: testNow, UpdatedAt: testNow,
			},
		},
	}
}

func run(t *testing.T, api *fakeAPI, args ...string) (string, error) {
	t.Helper()
	app := &App{API: api, Now: func() time.Time { return testNow }}
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWorkloadCmd(t *testing.T) {
	t.Run("lists every member and the overloaded week", func(t *testing.T) {
		out, err := run(t, &fakeAPI{snapshot: fixture()}, "workload")
		require.NoError(t, err)
		assert.Contains(t, out, "Ana")
		assert.Contains(t, out, "Ben")
		assert.Contains(t, out, "over capacity")
	})

	t.Run("availability narrows the cards", func(t *testing.T) {
		out, err := run(t, &fakeAPI{snapshot: fixture()}, "workload", "--availability", "Overload")
		require.NoError(t, err)
		assert.Contains(t, out, "Ana")
		assert.NotContains(t, out, "Ben")
	})

	t.Run("status filter drops members without matching tasks", func(t *testing.T) {
		out, err := run(t, &fakeAPI{snapshot: fixture()}, "workload", "--status", "done")
		require.NoError(t, err)
		assert.Contains(t, out, "Ben")
		assert.NotContains(t, out, "Ana")
	})

	t.Run("prints notices for collections that failed", func(t *testing.T) {
		snap := fixture()
		snap.Tasks = []domain.Task{}
		snap.Notices = []client.Notice{{Resource: "tasks", Err: errors.New("boom")}}
		out, err := run(t, &fakeAPI{snapshot: snap}, "workload")
		require.NoError(t, err)
		assert.Contains(t, out, "failed to load tasks")
		assert.NotContains(t, out, "over capacity")
	})

	for _, args := range [][]string{
		{"workload", "--availability", "idle"},
		{"workload", "--week", "7"},
		{"workload", "--month", "13"},
		{"workload", "--user", "nope"},
		{"workload", "--status", "blocked"},
	} {
		t.Run("rejects "+strings.Join(args[1:], " "), func(t *testing.T) {
			_, err := run(t, &fakeAPI{snapshot: fixture()}, args...)
			assert.Error(t, err)
		})
	}
}

func TestTimelineCmd(t *testing.T) {
	out, err := run(t, &fakeAPI{snapshot: fixture()}, "timeline", "--granularity", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Timeline 2025 (weekly)")
	assert.Contains(t, out, "Apollo")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "█")

	out, err = run(t, &fakeAPI{snapshot: fixture()}, "timeline", "--project", uuid.NewString())
	require.NoError(t, err)
	assert.Contains(t, out, "Timeline 2025 (monthly)")
	assert.Contains(t, out, "No tasks match the filters.")

	out, err = run(t, &fakeAPI{snapshot: fixture()}, "timeline", "--module", "none", "--status", "done")
	require.NoError(t, err)
	assert.Contains(t, out, "Review")
	assert.NotContains(t, out, "Launch")

	_, err = run(t, &fakeAPI{snapshot: fixture()}, "timeline", "--granularity", "daily")
	assert.Error(t, err)
}

func TestSummaryCmd(t *testing.T) {
	out, err := run(t, &fakeAPI{snapshot: fixture()}, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks 2  todo 0  in progress 1  done 1")
	assert.Contains(t, out, "June")
	assert.Contains(t, out, "45.0h")

	out, err = run(t, &fakeAPI{snapshot: fixture()}, "summary", "--name", "be", "--year", "2024", "--month", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "January")
	assert.Contains(t, out, "Ben")
}

func TestExportCmd(t *testing.T) {
	out, err := run(t, &fakeAPI{snapshot: fixture()}, "export")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Task,Project,Assigned,Status,Due Date", lines[0])
	assert.Equal(t, "Launch,Apollo,Ana,in_progress,2025-06-20", lines[1])

	path := filepath.Join(t.TempDir(), "tasks.csv")
	out, err = run(t, &fakeAPI{snapshot: fixture()}, "export", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Review,Apollo,Ben,done,2025-06-10")
}

func TestLoginCmd(t *testing.T) {
	api := &fakeAPI{token: "jwt-token"}
	out, err := run(t, api, "login", "--email", "ana@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token\n", out)
	assert.Equal(t, "ana@example.com", api.lastEmail)

	_, err = run(t, api, "login", "--email", "ana@example.com")
	assert.Error(t, err)

	_, err = run(t, &fakeAPI{loginErr: errors.New("invalid credentials")}, "login", "--email", "a@b.c", "--password", "x")
	assert.EqualError(t, err, "invalid credentials")
}

func TestRootBuildsClientFromEnv(t *testing.T) {
	t.Setenv("TASKHUB_API_URL", "http://api.internal:9000/")
	t.Setenv("TASKHUB_TOKEN", "abc")

	app := &App{}
	root := NewRootCmd(app)
	require.NoError(t, root.PersistentPreRunE(root, nil))
	_, ok := app.API.(*client.Client)
	assert.True(t, ok)

	t.Setenv("TASKHUB_API_URL", "not a url")
	app = &App{}
	root = NewRootCmd(app)
	assert.Error(t, root.PersistentPreRunE(root, nil))
	assert.Nil(t, app.API)
}
