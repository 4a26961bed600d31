package workload

import (
	"time"

	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// OverloadWeek is a week whose hours exceed capacity, located within its month.
type OverloadWeek struct {
	Key         calendar.WeekKey `json:"week"`
	WeekStart   time.Time        `json:"week_start"`
	Year        int              `json:"year"`
	Month       time.Month       `json:"month"`
	WeekOfMonth int              `json:"week_of_month"`
	Hours       float64          `json:"hours"`
	Overflow    float64          `json:"overflow"`
}

// OverloadWeeks lists every overloaded week in chronological order. The month
// and week-of-month come from the week's Monday.
func OverloadWeeks(weekly Weekly) []OverloadWeek {
	weeks := []OverloadWeek{}
	for _, key := range weekly.Keys() {
		hours := weekly[key]
		if !IsOverloaded(hours) {
			continue
		}
		start := key.Start()
		weeks = append(weeks, OverloadWeek{
			Key:         key,
			WeekStart:   start,
			Year:        start.Year(),
			Month:       start.Month(),
			WeekOfMonth: calendar.WeekOfMonth(start),
			Hours:       hours,
			Overflow:    Overflow(hours),
		})
	}
	return weeks
}

// OverloadFilter narrows overload notices to a calendar window. Zero fields
// match anything.
type OverloadFilter struct {
	Year        int
	Month       time.Month
	WeekOfMonth int
}

// IsZero reports whether the filter matches everything.
func (f OverloadFilter) IsZero() bool {
	return f == OverloadFilter{}
}

// Match reports whether the week's start falls inside the window.
func (f OverloadFilter) Match(w OverloadWeek) bool {
	if f.Year != 0 && w.Year != f.Year {
		return false
	}
	if f.Month != 0 && w.Month != f.Month {
		return false
	}
	if f.WeekOfMonth != 0 && w.WeekOfMonth != f.WeekOfMonth {
		return false
	}
	return true
}

// FilterOverloads keeps the weeks matching f.
func FilterOverloads(weeks []OverloadWeek, f OverloadFilter) []OverloadWeek {
	out := []OverloadWeek{}
	for _, w := range weeks {
		if f.Match(w) {
			out = append(out, w)
		}
	}
	return out
}
