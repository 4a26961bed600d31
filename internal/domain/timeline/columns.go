// Package timeline lays tasks out on a Gantt grid for one calendar year:
// columns at weekly, monthly or quarterly granularity, bars spanning the
// columns between a task's start and due dates, and rows grouped by project
// and module with completion progress.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// Granularity selects the column layout.
type Granularity string

const (
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
)

// DefaultGranularity is used when none is requested.
const DefaultGranularity = Monthly

// ParseGranularity accepts weekly, monthly or quarterly; empty input selects
// DefaultGranularity.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case "":
		return DefaultGranularity, nil
	case Weekly, Monthly, Quarterly:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Column is one cell of the grid header covering [Start, End] inclusive.
// Group is the label of the header row above it: the month for weekly
// columns, the quarter for quarterly ones, empty for monthly.
type Column struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	Group string    `json:"group,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the column.
func (c Column) Contains(d time.Time) bool {
	d = calendar.Day(d)
	return !d.Before(c.Start) && !d.After(c.End)
}

// Columns builds the header for year at granularity g. Columns are contiguous
// and cover every day of the year exactly once.
func Columns(year int, g Granularity) []Column {
	var cols []Column
	switch g {
	case Weekly:
		cols = weeklyColumns(year)
	case Quarterly:
		cols = monthColumns(year, true)
	default:
		cols = monthColumns(year, false)
	}
	for i := range cols {
		cols[i].Index = i
	}
	return cols
}

// weeklyColumns splits every month into Monday-aligned weeks clipped to the
// month: W1 runs from the 1st to the first Sunday.
func weeklyColumns(year int) []Column {
	var cols []Column
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(year, m, calendar.DaysInMonth(year, m), 0, 0, 0, 0, time.UTC)
		week := 1
		for start := first; !start.After(last); week++ {
			end := calendar.WeekStart(start).AddDate(0, 0, 6)
			if end.After(last) {
				end = last
			}
			cols = append(cols, Column{
				Label: fmt.Sprintf("W%d", week),
				Group: m.String(),
				Start: start,
				End:   end,
			})
			start = end.AddDate(0, 0, 1)
		}
	}
	return cols
}

func monthColumns(year int, quarterly bool) []Column {
	cols := make([]Column, 0, 12)
	for m := time.January; m <= time.December; m++ {
		col := Column{
			Label: m.String(),
			Start: time.Date(year, m, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, m, calendar.DaysInMonth(year, m), 0, 0, 0, 0, time.UTC),
		}
		if quarterly {
			col.Label = m.String()[:3]
			col.Group = fmt.Sprintf("Q%d", (int(m)-1)/3+1)
		}
		cols = append(cols, col)
	}
	return cols
}

// ColumnIndex returns the column containing d, or -1.
func ColumnIndex(cols []Column, d time.Time) int {
	for _, c := range cols {
		if c.Contains(d) {
			return c.Index
		}
	}
	return -1
}

// Bar is a task's horizontal extent on the grid, inclusive on both ends.
// ClippedStart and ClippedEnd mark bars that continue outside the year.
type Bar struct {
	StartIndex   int  `json:"start_index"`
	EndIndex     int  `json:"end_index"`
	Length       int  `json:"length"`
	ClippedStart bool `json:"clipped_start,omitempty"`
	ClippedEnd   bool `json:"clipped_end,omitempty"`
}

// PlaceBar positions a [start, due] range on cols. It returns false when a
// date is missing, the range is inverted, or it does not overlap the grid.
func PlaceBar(cols []Column, start, due *time.Time) (Bar, bool) {
	if start == nil || due == nil || len(cols) == 0 || due.Before(*start) {
		return Bar{}, false
	}
	first, last := cols[0], cols[len(cols)-1]
	if calendar.Day(*due).Before(first.Start) || calendar.Day(*start).After(last.End) {
		return Bar{}, false
	}

	var bar Bar
	if bar.StartIndex = ColumnIndex(cols, *start); bar.StartIndex < 0 {
		bar.StartIndex, bar.ClippedStart = first.Index, true
	}
	if bar.EndIndex = ColumnIndex(cols, *due); bar.EndIndex < 0 {
		bar.EndIndex, bar.ClippedEnd = last.Index, true
	}
	bar.Length = bar.EndIndex - bar.StartIndex + 1
	return bar, true
}
