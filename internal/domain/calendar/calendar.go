// Package calendar provides the date arithmetic shared by the reporting views:
// ISO week keys, Monday-aligned week starts, week-of-month numbering and
// working-day checks. All values are calendar dates normalized to UTC midnight.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Day returns the calendar date of t as midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date in DateLayout; a nil date renders as "".
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// isoWeekday maps Monday..Sunday to 1..7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekStart returns the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	return d.AddDate(0, 0, 1-isoWeekday(d))
}

// IsWorkday reports whether t falls Monday through Friday.
func IsWorkday(t time.Time) bool {
	return isoWeekday(t) <= 5
}

// WeekOfMonth numbers the Monday-aligned weeks of t's month. The first day of
// the month is always in week 1 and each following Monday starts a new week,
// so results range from 1 to 6.
func WeekOfMonth(t time.Time) int {
	d := Day(t)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := d.Day() + isoWeekday(first) - 1
	return (offset + 6) / 7
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekKey identifies an ISO-8601 week by ISO year and week number.
type WeekKey struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) WeekKey {
	y, w := Day(t).ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// String renders the key as "{year}-W{week}".
func (k WeekKey) String() string {
	return fmt.Sprintf("%d-W%d", k.Year, k.Week)
}

// ParseWeekKey parses the "{year}-W{week}" form produced by String.
func ParseWeekKey(s string) (WeekKey, error) {
	year, week, ok := strings.Cut(s, "-W")
	if !ok {
		return WeekKey{}, fmt.Errorf("invalid week key %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return WeekKey{}, fmt.Errorf("invalid week key %q: %w", s, err)
	}
	w, err := strconv.Atoi(week)
	if err != nil || w < 1 || w > 53 {
		return WeekKey{}, fmt.Errorf("invalid week key %q", s)
	}
	return WeekKey{Year: y, Week: w}, nil
}

// Start returns the Monday that begins the week. ISO week 1 is the week
// containing January 4th.
func (k WeekKey) Start() time.Time {
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return WeekStart(jan4).AddDate(0, 0, (k.Week-1)*7)
}

// Before orders keys chronologically.
func (k WeekKey) Before(other WeekKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Week < other.Week
}

// MarshalText lets WeekKey act as a JSON object key.
func (k WeekKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "{year}-W{week}" form.
func (k *WeekKey) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
