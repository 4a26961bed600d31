package formatter

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/phrazzld/taskhub/internal/domain"
)

var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleTitle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// StatusLabel renders a task status in its color.
func StatusLabel(status domain.TaskStatus) string {
	switch status {
	case domain.TaskStatusDone:
		return StyleGreen.Render("done")
	case domain.TaskStatusInProgress:
		return StyleBlue.Render("in progress")
	case domain.TaskStatusTodo:
		return StyleDim.Render("todo")
	default:
		return StyleDim.Render(string(status))
	}
}
