package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/taskhub/internal/domain/workload"
)

// FormatWorkload renders the dashboard cards and their overload notices.
func FormatWorkload(dash workload.Dashboard) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Workload"))
	b.WriteString("\n\n")

	if len(dash.Cards) == 0 {
		b.WriteString(StyleDim.Render("No members match the filters."))
		b.WriteString("\n")
		return b.String()
	}

	headers := []string{"Member", "State", "Todo", "Active", "Done", "Overdue", "Today", "This week", "Next available"}
	rows := make([][]string, 0, len(dash.Cards))
	for i := range dash.Cards {
		c := &dash.Cards[i]
		state := StyleGreen.Render("available")
		if !c.Available() {
			state = StyleYellow.Render("busy")
		}
		week := hoursLabel(c.CurrentWeek.Hours)
		if c.CurrentWeek.Overloaded {
			week = StyleRed.Render(week)
		}
		rows = append(rows, []string{
			c.User.Name,
			state,
			strconv.Itoa(c.Counts.Todo),
			strconv.Itoa(c.Counts.InProgress),
			strconv.Itoa(c.Counts.Done),
			strconv.Itoa(c.Counts.Overdue),
			strconv.Itoa(c.Counts.DueToday),
			week,
			c.Availability.NextAvailable.Format("Mon 2 Jan"),
		})
	}
	b.WriteString(RenderTable(headers, rows))

	if !dash.HasOverload {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(StyleHeader.Render("Overload"))
	b.WriteString("\n")
	for i := range dash.Cards {
		c := &dash.Cards[i]
		for _, o := range c.Overloads {
			b.WriteString(StyleRed.Render(fmt.Sprintf(
				"%s: %s (week %d of %s) has %s planned, %s over capacity",
				c.User.Name, o.Key, o.WeekOfMonth, o.Month, hoursLabel(o.Hours), hoursLabel(o.Overflow))))
			b.WriteString("\n")
		}
	}
	return b.String()
}
