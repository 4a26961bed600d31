package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// NoModuleName labels the group of tasks that have no module.
const NoModuleName = "No Module"

// View is the immutable filter state of a timeline request. A ModuleID of
// uuid.Nil selects the tasks without a module.
type View struct {
	Year        int
	Granularity Granularity
	ProjectID   *uuid.UUID
	Status      domain.TaskStatus
	ModuleID    *uuid.UUID
}

// TaskRow is a task and its bar; Bar is nil when the task cannot be placed.
type TaskRow struct {
	Task domain.Task `json:"task"`
	Bar  *Bar        `json:"bar"`
}

// ModuleGroup holds the visible tasks of one module, or of no module.
type ModuleGroup struct {
	ModuleID *uuid.UUID `json:"module_id"`
	Name     string     `json:"name"`
	Progress int        `json:"progress"`
	Tasks    []TaskRow  `json:"tasks"`
}

// ProjectGroup holds the visible modules of one project.
type ProjectGroup struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Name      string        `json:"name"`
	Progress  int           `json:"progress"`
	Modules   []ModuleGroup `json:"modules"`
}

// Timeline is a complete Gantt view.
type Timeline struct {
	Year        int         `json:"year"`
	Granularity Granularity `json:"granularity"`
	Columns     []Column    `json:"columns"`
	// CurrentIndex is the column containing today, or -1 outside the year.
	CurrentIndex int            `json:"current_index"`
	Projects     []ProjectGroup `json:"projects"`
}

// Progress is the rounded percentage of done tasks, 0 for no tasks.
func Progress(tasks []domain.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for i := range tasks {
		if tasks[i].Status == domain.TaskStatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

func (v View) matches(t *domain.Task, project *domain.Project) bool {
	if v.Status != "" && t.Status != v.Status {
		return false
	}
	if v.ModuleID == nil {
		return true
	}
	moduleID := resolveModule(t, project)
	if *v.ModuleID == uuid.Nil {
		return moduleID == nil
	}
	return moduleID != nil && *moduleID == *v.ModuleID
}

// resolveModule returns the task's module if it belongs to project. A module
// reference that the project does not know is treated as no module.
func resolveModule(t *domain.Task, project *domain.Project) *uuid.UUID {
	if t.ModuleID == nil {
		return nil
	}
	if _, ok := project.Module(*t.ModuleID); !ok {
		return nil
	}
	return t.ModuleID
}

// Build groups the tasks matching view under their projects and modules and
// places their bars. Projects and modules without visible tasks are omitted;
// tasks without a project never appear.
func Build(projects []domain.Project, tasks []domain.Task, view View, now time.Time) Timeline {
	if view.Granularity == "" {
		view.Granularity = DefaultGranularity
	}
	if view.Year == 0 {
		view.Year = now.Year()
	}

	cols := Columns(view.Year, view.Granularity)
	tl := Timeline{
		Year:         view.Year,
		Granularity:  view.Granularity,
		Columns:      cols,
		CurrentIndex: ColumnIndex(cols, now),
		Projects:     []ProjectGroup{},
	}

	byProject := make(map[uuid.UUID][]domain.Task)
	for i := range tasks {
		if tasks[i].ProjectID != nil {
			byProject[*tasks[i].ProjectID] = append(byProject[*tasks[i].ProjectID], tasks[i])
		}
	}

	for i := range projects {
		project := &projects[i]
		if view.ProjectID != nil && project.ID != *view.ProjectID {
			continue
		}

		var visible []domain.Task
		for j := range byProject[project.ID] {
			if view.matches(&byProject[project.ID][j], project) {
				visible = append(visible, byProject[project.ID][j])
			}
		}
		if len(visible) == 0 {
			continue
		}

		tl.Projects = append(tl.Projects, ProjectGroup{
			ProjectID: project.ID,
			Name:      project.Name,
			Progress:  Progress(visible),
			Modules:   groupModules(project, visible, cols),
		})
	}
	return tl
}

func groupModules(project *domain.Project, tasks []domain.Task, cols []Column) []ModuleGroup {
	byModule := make(map[uuid.UUID][]domain.Task)
	var unassigned []domain.Task
	for i := range tasks {
		if id := resolveModule(&tasks[i], project); id != nil {
			byModule[*id] = append(byModule[*id], tasks[i])
		} else {
			unassigned = append(unassigned, tasks[i])
		}
	}

	groups := []ModuleGroup{}
	for _, module := range project.Modules {
		if len(byModule[module.ID]) == 0 {
			continue
		}
		id := module.ID
		groups = append(groups, newModuleGroup(&id, module.Name, byModule[module.ID], cols))
	}
	if len(unassigned) > 0 {
		groups = append(groups, newModuleGroup(nil, NoModuleName, unassigned, cols))
	}
	return groups
}

func newModuleGroup(id *uuid.UUID, name string, tasks []domain.Task, cols []Column) ModuleGroup {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].StartDate, tasks[j].StartDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return tasks[i].Title < tasks[j].Title
	})

	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		row := TaskRow{Task: t}
		if bar, ok := PlaceBar(cols, t.StartDate, t.DueDate); ok {
			row.Bar = &bar
		}
		rows = append(rows, row)
	}
	return ModuleGroup{ModuleID: id, Name: name, Progress: Progress(tasks), Tasks: rows}
}
