package workload

import (
	"math"
	"time"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// Availability is a user's capacity picture for the current ISO week.
type Availability struct {
	BusyHours      float64   `json:"busy_hours"`
	AvailableHours float64   `json:"available_hours"`
	NextAvailable  time.Time `json:"next_available"`
}

// CurrentWeekBusyHours sums the estimates of counted tasks due in now's ISO
// week. Tasks without a due date never count.
func CurrentWeekBusyHours(tasks []domain.Task, now time.Time) float64 {
	current := calendar.WeekOf(now)
	var busy float64
	for i := range tasks {
		task := &tasks[i]
		if !Counted(task.Status) || task.DueDate == nil || task.Hours() <= 0 {
			continue
		}
		if calendar.WeekOf(*task.DueDate) == current {
			busy += task.Hours()
		}
	}
	return busy
}

// ProjectAvailability computes busy and available hours for now's week and
// the date the user can take new work.
func ProjectAvailability(tasks []domain.Task, now time.Time) Availability {
	busy := CurrentWeekBusyHours(tasks, now)
	return Availability{
		BusyHours:      busy,
		AvailableHours: math.Max(0, WeeklyCapacityHours-busy),
		NextAvailable:  NextAvailableDate(busy, now),
	}
}

// NextAvailableDate drains busy hours at DailyCapacityHours per working day,
// starting today, and returns the first day on which the balance is used up.
// With nothing booked the answer is today, even on a weekend.
func NextAvailableDate(busy float64, now time.Time) time.Time {
	day := calendar.Day(now)
	if busy <= 0 {
		return day
	}
	remaining := busy
	for {
		if calendar.IsWorkday(day) {
			remaining -= DailyCapacityHours
			if remaining <= 0 {
				return day
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}
