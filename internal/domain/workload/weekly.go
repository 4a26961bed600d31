// Package workload derives per-user load from task estimates: hours bucketed
// by ISO week, overload detection against the weekly capacity, current-week
// availability with a next-available projection, and the dashboard cards that
// combine them. Every function is pure; the caller passes the clock.
package workload

import (
	"sort"
	"time"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

const (
	// WeeklyCapacityHours is one person's working capacity per week.
	WeeklyCapacityHours = 40.0

	// DailyCapacityHours is one working day, Monday through Friday.
	DailyCapacityHours = 8.0
)

// CountsTodo controls whether todo tasks load the weekly buckets and the
// current-week busy hours. It is off: only started or finished work counts.
const CountsTodo = false

// Counted reports whether a task in status contributes hours to workload.
func Counted(status domain.TaskStatus) bool {
	switch status {
	case domain.TaskStatusInProgress, domain.TaskStatusDone:
		return true
	case domain.TaskStatusTodo:
		return CountsTodo
	}
	return false
}

// Weekly maps ISO weeks to allocated hours.
type Weekly map[calendar.WeekKey]float64

// WeeklyHours spreads each counted task's estimate evenly across the ISO weeks
// touched by its [start, due] range. Tasks without a positive estimate or a
// due date are skipped. A missing start, or a start after the due date,
// collapses the range to the due date's week.
func WeeklyHours(tasks []domain.Task) Weekly {
	weekly := make(Weekly)
	for i := range tasks {
		task := &tasks[i]
		if !Counted(task.Status) || task.Hours() <= 0 || task.DueDate == nil {
			continue
		}

		due := calendar.Day(*task.DueDate)
		start := due
		if task.StartDate != nil && !task.StartDate.After(due) {
			start = calendar.Day(*task.StartDate)
		}

		weeks := weeksTouched(start, due)
		share := task.Hours() / float64(len(weeks))
		for _, week := range weeks {
			weekly[week] += share
		}
	}
	return weekly
}

// weeksTouched lists the distinct ISO weeks between start and due inclusive.
func weeksTouched(start, due time.Time) []calendar.WeekKey {
	var weeks []calendar.WeekKey
	for monday := calendar.WeekStart(start); !monday.After(due); monday = monday.AddDate(0, 0, 7) {
		weeks = append(weeks, calendar.WeekOf(monday))
	}
	return weeks
}

// Keys returns the weeks in chronological order.
func (w Weekly) Keys() []calendar.WeekKey {
	keys := make([]calendar.WeekKey, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// Total sums every bucket.
func (w Weekly) Total() float64 {
	var total float64
	for _, h := range w {
		total += h
	}
	return total
}

// Overloaded reports whether any week exceeds capacity.
func (w Weekly) Overloaded() bool {
	for _, h := range w {
		if IsOverloaded(h) {
			return true
		}
	}
	return false
}

// IsOverloaded reports whether a week's hours exceed capacity. Exactly 40
// hours is full, not overloaded.
func IsOverloaded(hours float64) bool {
	return hours > WeeklyCapacityHours
}

// Overflow is the number of hours above capacity, zero when within it.
func Overflow(hours float64) float64 {
	if !IsOverloaded(hours) {
		return 0
	}
	return hours - WeeklyCapacityHours
}
