package timeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/domain"
)

type fixture struct {
	now       time.Time
	apollo    domain.Project
	gemini    domain.Project
	backend   domain.ProjectModule
	frontend  domain.ProjectModule
	tasks     []domain.Task
	strayTask domain.Task
}

func newTask(title string, status domain.TaskStatus, project *uuid.UUID, module *uuid.UUID, start, due *time.Time) domain.Task {
	return domain.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    status,
		Priority:  domain.TaskPriorityMedium,
		CreatedBy: uuid.New(),
		ProjectID: project,
		ModuleID:  module,
		StartDate: start,
		DueDate:   due,
	}
}

func newFixture() fixture {
	f := fixture{now: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)}
	f.apollo = domain.Project{ID: uuid.New(), Name: "Apollo"}
	f.gemini = domain.Project{ID: uuid.New(), Name: "Gemini"}
	f.backend = domain.ProjectModule{ID: uuid.New(), ProjectID: f.apollo.ID, Name: "Backend"}
	f.frontend = domain.ProjectModule{ID: uuid.New(), ProjectID: f.apollo.ID, Name: "Frontend"}
	f.apollo.Modules = []domain.ProjectModule{f.backend, f.frontend}

	f.tasks = []domain.Task{
		newTask("API", domain.TaskStatusDone, &f.apollo.ID, &f.backend.ID, ptr(date(2025, time.February, 3)), ptr(date(2025, time.March, 1))),
		newTask("Auth", domain.TaskStatusInProgress, &f.apollo.ID, &f.backend.ID, ptr(date(2025, time.January, 6)), ptr(date(2025, time.January, 20))),
		newTask("Docs", domain.TaskStatusTodo, &f.apollo.ID, nil, nil, ptr(date(2025, time.April, 1))),
		newTask("Stray module", domain.TaskStatusTodo, &f.apollo.ID, ptr(uuid.New()), ptr(date(2025, time.May, 1)), ptr(date(2025, time.May, 2))),
		newTask("Launch", domain.TaskStatusTodo, &f.gemini.ID, nil, ptr(date(2025, time.June, 1)), ptr(date(2025, time.June, 30))),
	}
	f.strayTask = newTask("No project", domain.TaskStatusTodo, nil, nil, ptr(date(2025, time.June, 1)), ptr(date(2025, time.June, 2)))
	return f
}

func (f fixture) build(view View) Timeline {
	return Build([]domain.Project{f.apollo, f.gemini}, append(f.tasks, f.strayTask), view, f.now)
}

func TestBuildGroupsByProjectAndModule(t *testing.T) {
	f := newFixture()
	tl := f.build(View{})

	assert.Equal(t, 2025, tl.Year)
	assert.Equal(t, Monthly, tl.Granularity)
	assert.Equal(t, 2, tl.CurrentIndex)
	require.Len(t, tl.Projects, 2)

	apollo := tl.Projects[0]
	assert.Equal(t, "Apollo", apollo.Name)
	assert.Equal(t, 25, apollo.Progress)
	require.Len(t, apollo.Modules, 2, "frontend has no tasks and is omitted")

	backend := apollo.Modules[0]
	assert.Equal(t, "Backend", backend.Name)
	assert.Equal(t, 50, backend.Progress)
	require.Len(t, backend.Tasks, 2)
	assert.Equal(t, "Auth", backend.Tasks[0].Task.Title, "rows are ordered by start date")
	require.NotNil(t, backend.Tasks[0].Bar)
	assert.Equal(t, Bar{StartIndex: 0, EndIndex: 0, Length: 1}, *backend.Tasks[0].Bar)

	noModule := apollo.Modules[1]
	assert.Equal(t, NoModuleName, noModule.Name)
	assert.Nil(t, noModule.ModuleID)
	require.Len(t, noModule.Tasks, 2)
	assert.Equal(t, "Stray module", noModule.Tasks[0].Task.Title)
	assert.Equal(t, "Docs", noModule.Tasks[1].Task.Title)
	assert.Nil(t, noModule.Tasks[1].Bar, "a task without a start date has no bar")

	gemini := tl.Projects[1]
	assert.Equal(t, 0, gemini.Progress)
	require.Len(t, gemini.Modules, 1)
	assert.Equal(t, NoModuleName, gemini.Modules[0].Name)
}

func TestBuildFilters(t *testing.T) {
	f := newFixture()

	t.Run("project filter", func(t *testing.T) {
		tl := f.build(View{ProjectID: &f.gemini.ID})
		require.Len(t, tl.Projects, 1)
		assert.Equal(t, "Gemini", tl.Projects[0].Name)
	})

	t.Run("status filter drops empty projects", func(t *testing.T) {
		tl := f.build(View{Status: domain.TaskStatusDone})
		require.Len(t, tl.Projects, 1)
		assert.Equal(t, 100, tl.Projects[0].Progress)
		require.Len(t, tl.Projects[0].Modules, 1)
		assert.Equal(t, "Backend", tl.Projects[0].Modules[0].Name)
	})

	t.Run("module filter", func(t *testing.T) {
		tl := f.build(View{ModuleID: &f.backend.ID})
		require.Len(t, tl.Projects, 1)
		require.Len(t, tl.Projects[0].Modules, 1)
		assert.Len(t, tl.Projects[0].Modules[0].Tasks, 2)
	})

	t.Run("no module filter", func(t *testing.T) {
		none := uuid.Nil
		tl := f.build(View{ModuleID: &none})
		require.Len(t, tl.Projects, 2)
		for _, p := range tl.Projects {
			require.Len(t, p.Modules, 1)
			assert.Equal(t, NoModuleName, p.Modules[0].Name)
		}
	})

	t.Run("nothing matches", func(t *testing.T) {
		missing := uuid.New()
		tl := f.build(View{ProjectID: &missing})
		assert.NotNil(t, tl.Projects)
		assert.Empty(t, tl.Projects)
	})
}

func TestBuildOtherYear(t *testing.T) {
	f := newFixture()
	tl := f.build(View{Year: 2024, Granularity: Quarterly})
	assert.Equal(t, -1, tl.CurrentIndex)
	require.NotEmpty(t, tl.Projects)
	for _, p := range tl.Projects {
		for _, m := range p.Modules {
			for _, row := range m.Tasks {
				assert.Nil(t, row.Bar, row.Task.Title)
			}
		}
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(nil))
	assert.Equal(t, 33, Progress([]domain.Task{{Status: domain.TaskStatusDone}, {}, {}}))
	assert.Equal(t, 67, Progress([]domain.Task{{Status: domain.TaskStatusDone}, {Status: domain.TaskStatusDone}, {}}))
	assert.Equal(t, 100, Progress([]domain.Task{{Status: domain.TaskStatusDone}}))
}
