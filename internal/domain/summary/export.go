package summary

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/domain/calendar"
)

// CSVHeader is the first row of an export.
var CSVHeader = []string{"Task", "Project", "Assigned", "Status", "Due Date"}

// WriteCSV writes one row per task. Unknown projects, assignees and missing
// due dates render as "-". Free-text cells that a spreadsheet would evaluate
// as a formula are prefixed with a single quote.
func WriteCSV(w io.Writer, users []domain.User, projects []domain.Project, tasks []domain.Task) error {
	userNames, projectNames := nameIndex(users, projects)

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range tasks {
		t := &tasks[i]
		due := calendar.FormatDate(t.DueDate)
		if due == "" {
			due = "-"
		}
		row := []string{
			textCell(t.Title),
			textCell(resolveName(projectNames, t.ProjectID)),
			textCell(resolveName(userNames, t.AssignmentID)),
			string(t.Status),
			due,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// textCell neutralises formula triggers at the start of a cell. A lone "-" is
// the placeholder and stays as is.
func textCell(s string) string {
	if s == "" || s == "-" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
