package summary

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
)

// WorkingHours is a member's estimated hours by due date.
type WorkingHours struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	YearHours  float64   `json:"year_hours"`
	MonthHours float64   `json:"month_hours"`
}

// MemberWorkingHours sums each member's estimates for tasks due in year, and
// within that in month (0 skips the month figure). Every status counts.
// Rows are ordered by year hours, highest first.
func MemberWorkingHours(users []domain.User, tasks []domain.Task, year int, month time.Month) []WorkingHours {
	rows := make([]WorkingHours, 0, len(users))
	index := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		rows = append(rows, WorkingHours{UserID: u.ID, Name: u.Name})
		index[u.ID] = i
	}

	for i := range tasks {
		t := &tasks[i]
		if t.AssignmentID == nil || t.DueDate == nil || t.Hours() <= 0 || t.DueDate.Year() != year {
			continue
		}
		idx, ok := index[*t.AssignmentID]
		if !ok {
			continue
		}
		rows[idx].YearHours += t.Hours()
		if month != 0 && t.DueDate.Month() == month {
			rows[idx].MonthHours += t.Hours()
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].YearHours > rows[j].YearHours })
	return rows
}
