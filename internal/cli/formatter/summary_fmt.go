package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/taskhub/internal/domain/summary"
)

// FormatSummary renders the overview, member and project tables, working
// hours for year and month, and the recent activity feed.
func FormatSummary(r summary.Report, hours []summary.WorkingHours, year int, month time.Month) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Summary"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Tasks %d  todo %d  in progress %d  done %d\n",
		r.Totals.All, r.Totals.Todo, r.Totals.InProgress, r.Totals.Done))
	b.WriteString(fmt.Sprintf("Members %d  projects %d  avg/member %.1f  avg/project %.1f\n\n",
		r.MemberCount, r.ProjectCount, r.AvgTasksPerMember, r.AvgTasksPerProject))

	memberRows := make([][]string, 0, len(r.Members))
	for _, m := range r.Members {
		state := StyleGreen.Render("available")
		if !m.Available {
			state = StyleYellow.Render("busy")
		}
		memberRows = append(memberRows, []string{
			m.Name,
			strconv.Itoa(m.Tasks.All),
			strconv.Itoa(m.Tasks.Done),
			fmt.Sprintf("%.1f%%", m.PercentDone),
			state,
		})
	}
	b.WriteString(RenderTable([]string{"Member", "Tasks", "Done", "Complete", "State"}, memberRows))
	b.WriteString("\n")

	projectRows := make([][]string, 0, len(r.Projects))
	for _, p := range r.Projects {
		projectRows = append(projectRows, []string{
			p.Name,
			strconv.Itoa(p.Tasks.All),
			RenderProgress(int(p.PercentDone+0.5), 20),
		})
	}
	b.WriteString(RenderTable([]string{"Project", "Tasks", "Progress"}, projectRows))
	b.WriteString("\n")

	hourRows := make([][]string, 0, len(hours))
	for _, h := range hours {
		hourRows = append(hourRows, []string{h.Name, hoursLabel(h.YearHours), hoursLabel(h.MonthHours)})
	}
	b.WriteString(RenderTable([]string{"Member", itoa(year), month.String()}, hourRows))

	if len(r.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleHeader.Render("Recent"))
		b.WriteString("\n")
		for _, a := range r.Recent {
			line := fmt.Sprintf("%s  %s %q", a.At.Format("2006-01-02 15:04"), a.Kind, a.Title)
			if a.User != "" {
				line += " by " + a.User
			}
			b.WriteString(StyleDim.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}
