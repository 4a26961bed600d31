package workload

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// Bucket classifies a user for the availability filter. The buckets overlap:
// an overloaded user is also available or busy.
type Bucket string

const (
	BucketAvailable Bucket = "available"
	BucketBusy      Bucket = "busy"
	BucketOverload  Bucket = "overload"
)

// Valid reports whether b is empty or a known bucket.
func (b Bucket) Valid() bool {
	switch b {
	case "", BucketAvailable, BucketBusy, BucketOverload:
		return true
	}
	return false
}

// View is the immutable filter state of a dashboard request. Zero values match
// everything. Month and WeekOfMonth narrow both the tasks (by due date) and
// the overload notices (by week start); Year narrows notices only.
type View struct {
	UserID       *uuid.UUID
	ProjectID    *uuid.UUID
	Status       domain.TaskStatus
	Year         int
	Month        time.Month
	WeekOfMonth  int
	Availability Bucket
}

// OverloadFilter returns the notice window implied by the view.
func (v View) OverloadFilter() OverloadFilter {
	return OverloadFilter{Year: v.Year, Month: v.Month, WeekOfMonth: v.WeekOfMonth}
}

func (v View) narrowsUsers() bool {
	return v.UserID != nil || v.ProjectID != nil || v.Status != ""
}

func (v View) matchesTask(t *domain.Task) bool {
	if v.UserID != nil && !t.IsAssignedTo(*v.UserID) {
		return false
	}
	if v.Status != "" && t.Status != v.Status {
		return false
	}
	if v.ProjectID != nil && !t.InProject(*v.ProjectID) {
		return false
	}
	if v.Month == 0 && v.WeekOfMonth == 0 {
		return true
	}
	if t.DueDate == nil {
		return false
	}
	if v.Month != 0 && t.DueDate.Month() != v.Month {
		return false
	}
	return v.WeekOfMonth == 0 || calendar.WeekOfMonth(*t.DueDate) == v.WeekOfMonth
}

// StatusCounts tallies a user's tasks.
type StatusCounts struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
	DueToday   int `json:"due_today"`
}

// CountStatuses tallies tasks by status and due state relative to now.
func CountStatuses(tasks []domain.Task, now time.Time) StatusCounts {
	var c StatusCounts
	for i := range tasks {
		task := &tasks[i]
		c.Total++
		switch task.Status {
		case domain.TaskStatusTodo:
			c.Todo++
		case domain.TaskStatusInProgress:
			c.InProgress++
		case domain.TaskStatusDone:
			c.Done++
		}
		if task.IsOverdue(now) {
			c.Overdue++
		}
		if task.IsDueToday(now) {
			c.DueToday++
		}
	}
	return c
}

// WeekLoad is the load of a single week.
type WeekLoad struct {
	Key        calendar.WeekKey `json:"week"`
	Hours      float64          `json:"hours"`
	Overloaded bool             `json:"overloaded"`
	Overflow   float64          `json:"overflow"`
}

// Card is one user's dashboard entry.
type Card struct {
	User        domain.User    `json:"user"`
	Counts      StatusCounts   `json:"counts"`
	Tasks       []domain.Task  `json:"tasks"`
	Weekly      Weekly         `json:"weekly"`
	Overloaded  bool           `json:"overloaded"`
	Overloads   []OverloadWeek `json:"overloads"`
	CurrentWeek WeekLoad       `json:"current_week"`
	// ActiveHours sums in-progress estimates regardless of week.
	ActiveHours     float64      `json:"active_hours"`
	InProgressHours float64      `json:"in_progress_hours"`
	DoneHours       float64      `json:"done_hours"`
	Availability    Availability `json:"availability"`
}

// Available reports whether the user has no work in progress.
func (c *Card) Available() bool {
	return c.Counts.InProgress == 0
}

// InBucket reports whether the card passes the availability filter.
func (c *Card) InBucket(b Bucket) bool {
	switch b {
	case BucketAvailable:
		return c.Available()
	case BucketBusy:
		return !c.Available()
	case BucketOverload:
		return c.Overloaded
	}
	return true
}

// Dashboard is the filtered set of cards.
type Dashboard struct {
	Cards []Card `json:"cards"`
	// HasOverload is set when any visible card has an overload notice in the
	// view's window.
	HasOverload bool `json:"has_overload"`
}

// NewCard builds the card for user from the tasks assigned to them.
func NewCard(user domain.User, tasks []domain.Task, overloads OverloadFilter, now time.Time) Card {
	weekly := WeeklyHours(tasks)
	current := calendar.WeekOf(now)
	currentHours := weekly[current]

	card := Card{
		User:       user,
		Counts:     CountStatuses(tasks, now),
		Tasks:      tasks,
		Weekly:     weekly,
		Overloaded: weekly.Overloaded(),
		Overloads:  FilterOverloads(OverloadWeeks(weekly), overloads),
		CurrentWeek: WeekLoad{
			Key:        current,
			Hours:      currentHours,
			Overloaded: IsOverloaded(currentHours),
			Overflow:   Overflow(currentHours),
		},
		Availability: ProjectAvailability(tasks, now),
	}

	for i := range tasks {
		task := &tasks[i]
		if task.DueDate == nil || task.Hours() <= 0 {
			continue
		}
		thisWeek := calendar.WeekOf(*task.DueDate) == current
		switch task.Status {
		case domain.TaskStatusInProgress:
			card.ActiveHours += task.Hours()
			if thisWeek {
				card.InProgressHours += task.Hours()
			}
		case domain.TaskStatusDone:
			if thisWeek {
				card.DoneHours += task.Hours()
			}
		}
	}
	return card
}

// BuildDashboard assembles one card per user from the tasks matching view.
// Users with no matching tasks are dropped only when the view narrows by user,
// status or project. Cards are ordered by task count, busiest first, then by name.
func BuildDashboard(users []domain.User, tasks []domain.Task, view View, now time.Time) Dashboard {
	byUser := make(map[uuid.UUID][]domain.Task, len(users))
	for i := range tasks {
		task := &tasks[i]
		if task.AssignmentID == nil || !view.matchesTask(task) {
			continue
		}
		byUser[*task.AssignmentID] = append(byUser[*task.AssignmentID], *task)
	}

	dash := Dashboard{Cards: []Card{}}
	for _, user := range users {
		userTasks := byUser[user.ID]
		if userTasks == nil {
			userTasks = []domain.Task{}
		}
		if len(userTasks) == 0 && view.narrowsUsers() {
			continue
		}
		card := NewCard(user, userTasks, view.OverloadFilter(), now)
		if !card.InBucket(view.Availability) {
			continue
		}
		if len(card.Overloads) > 0 {
			dash.HasOverload = true
		}
		dash.Cards = append(dash.Cards, card)
	}

	sort.SliceStable(dash.Cards, func(i, j int) bool {
		a, b := dash.Cards[i], dash.Cards[j]
		if a.Counts.Total != b.Counts.Total {
			return a.Counts.Total > b.Counts.Total
		}
		return a.User.Name < b.User.Name
	})
	return dash
}
