// Package summary computes the overview report: task totals by status,
// per-member and per-project breakdowns, recent activity, working hours per
// member and a CSV export of the task list.
package summary

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// RecentLimit caps the recent activity feed.
const RecentLimit = 10

// StatusTotals counts tasks by status.
type StatusTotals struct {
	All        int `json:"all"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

func (s *StatusTotals) add(status domain.TaskStatus) {
	s.All++
	switch status {
	case domain.TaskStatusTodo:
		s.Todo++
	case domain.TaskStatusInProgress:
		s.InProgress++
	case domain.TaskStatusDone:
		s.Done++
	}
}

// MemberSummary is one user's share of the work.
type MemberSummary struct {
	UserID      uuid.UUID    `json:"user_id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Tasks       StatusTotals `json:"tasks"`
	PercentDone float64      `json:"percent_done"`
	// Available is true while the member has nothing in progress.
	Available bool `json:"is_available"`
}

// ModuleSummary counts a module's tasks.
type ModuleSummary struct {
	ModuleID uuid.UUID `json:"module_id"`
	Name     string    `json:"name"`
	Total    int       `json:"total"`
	Done     int       `json:"done"`
}

// ProjectSummary is one project's completion picture.
type ProjectSummary struct {
	ProjectID   uuid.UUID       `json:"project_id"`
	Name        string          `json:"name"`
	Tasks       StatusTotals    `json:"tasks"`
	PercentDone float64         `json:"percent_done"`
	Modules     []ModuleSummary `json:"modules"`
}

// Activity is an entry in the recent activity feed.
type Activity struct {
	Kind    string    `json:"kind"` // "task" or "project"
	Title   string    `json:"title"`
	User    string    `json:"user"`
	Project string    `json:"project"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}

// Report is the full overview.
type Report struct {
	Totals             StatusTotals     `json:"totals"`
	Members            []MemberSummary  `json:"members"`
	Projects           []ProjectSummary `json:"projects"`
	MemberCount        int              `json:"member_count"`
	ProjectCount       int              `json:"project_count"`
	AvgTasksPerMember  float64          `json:"avg_tasks_per_member"`
	AvgTasksPerProject float64          `json:"avg_tasks_per_project"`
	Recent             []Activity       `json:"recent"`
}

// Filter narrows the member list. Empty fields match everything.
type Filter struct {
	Name      string
	Status    domain.TaskStatus
	ProjectID *uuid.UUID
}

// percent returns part/whole as a percentage rounded to one decimal.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10) / 10
}

// Build computes the overview. Members are ordered by name, projects by task
// count descending.
func Build(users []domain.User, projects []domain.Project, tasks []domain.Task, filter Filter) Report {
	r := Report{
		Members:      []MemberSummary{},
		Projects:     []ProjectSummary{},
		MemberCount:  len(users),
		ProjectCount: len(projects),
	}
	for i := range tasks {
		r.Totals.add(tasks[i].Status)
	}
	r.AvgTasksPerMember = ratio(len(tasks), len(users))
	r.AvgTasksPerProject = ratio(len(tasks), len(projects))

	for _, u := range users {
		m := memberSummary(u, tasks)
		if filter.matches(m, tasks) {
			r.Members = append(r.Members, m)
		}
	}
	sort.SliceStable(r.Members, func(i, j int) bool {
		return strings.ToLower(r.Members[i].Name) < strings.ToLower(r.Members[j].Name)
	})

	for i := range projects {
		r.Projects = append(r.Projects, projectSummary(&projects[i], tasks))
	}
	sort.SliceStable(r.Projects, func(i, j int) bool {
		return r.Projects[i].Tasks.All > r.Projects[j].Tasks.All
	})

	r.Recent = RecentActivity(users, projects, tasks, RecentLimit)
	return r
}

func memberSummary(u domain.User, tasks []domain.Task) MemberSummary {
	m := MemberSummary{UserID: u.ID, Name: u.Name, Email: u.Email}
	for i := range tasks {
		if tasks[i].IsAssignedTo(u.ID) {
			m.Tasks.add(tasks[i].Status)
		}
	}
	m.PercentDone = percent(m.Tasks.Done, m.Tasks.All)
	m.Available = m.Tasks.InProgress == 0
	return m
}

func (f Filter) matches(m MemberSummary, tasks []domain.Task) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(f.Name)) {
		return false
	}
	switch f.Status {
	case domain.TaskStatusTodo:
		if m.Tasks.Todo == 0 {
			return false
		}
	case domain.TaskStatusInProgress:
		if m.Tasks.InProgress == 0 {
			return false
		}
	case domain.TaskStatusDone:
		if m.Tasks.Done == 0 {
			return false
		}
	}
	if f.ProjectID == nil {
		return true
	}
	for i := range tasks {
		if tasks[i].IsAssignedTo(m.UserID) && tasks[i].InProject(*f.ProjectID) {
			return true
		}
	}
	return false
}

func projectSummary(p *domain.Project, tasks []domain.Task) ProjectSummary {
	s := ProjectSummary{ProjectID: p.ID, Name: p.Name, Modules: []ModuleSummary{}}
	modules := make(map[uuid.UUID]*ModuleSummary, len(p.Modules))
	for _, mod := range p.Modules {
		s.Modules = append(s.Modules, ModuleSummary{ModuleID: mod.ID, Name: mod.Name})
	}
	for i := range s.Modules {
		modules[s.Modules[i].ModuleID] = &s.Modules[i]
	}

	for i := range tasks {
		t := &tasks[i]
		if !t.InProject(p.ID) {
			continue
		}
		s.Tasks.add(t.Status)
		if t.ModuleID == nil {
			continue
		}
		if mod, ok := modules[*t.ModuleID]; ok {
			mod.Total++
			if t.Status == domain.TaskStatusDone {
				mod.Done++
			}
		}
	}
	s.PercentDone = percent(s.Tasks.Done, s.Tasks.All)
	return s
}

// RecentActivity merges task and project creations, newest first, capped at
// limit. Names that cannot be resolved render as "-".
func RecentActivity(users []domain.User, projects []domain.Project, tasks []domain.Task, limit int) []Activity {
	userNames, projectNames := nameIndex(users, projects)

	feed := make([]Activity, 0, len(tasks)+len(projects))
	for i := range tasks {
		t := &tasks[i]
		if t.CreatedAt.IsZero() {
			continue
		}
		feed = append(feed, Activity{
			Kind:    "task",
			Title:   t.Title,
			User:    resolveName(userNames, t.AssignmentID),
			Project: resolveName(projectNames, t.ProjectID),
			Status:  string(t.Status),
			At:      t.CreatedAt,
		})
	}
	for i := range projects {
		p := &projects[i]
		if p.CreatedAt.IsZero() {
			continue
		}
		feed = append(feed, Activity{
			Kind:    "project",
			Title:   p.Name,
			User:    resolveName(userNames, p.CreatedBy),
			Project: p.Name,
			At:      p.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].At.After(feed[j].At) })
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

func nameIndex(users []domain.User, projects []domain.Project) (map[uuid.UUID]string, map[uuid.UUID]string) {
	userNames := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}
	projectNames := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	return userNames, projectNames
}

func resolveName(names map[uuid.UUID]string, id *uuid.UUID) string {
	if id != nil {
		if name, ok := names[*id]; ok {
			return name
		}
	}
	return "-"
}
