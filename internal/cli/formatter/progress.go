package formatter

import (
	"fmt"
	"strings"
)

// RenderProgress draws a percentage as [████░░░░]  45%.
func RenderProgress(percent, width int) string {
	percent = min(max(percent, 0), 100)
	width = max(width, 2)

	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := StyleGreen
	switch {
	case percent < 33:
		style = StyleRed
	case percent < 66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3d%%", style.Render(bar), percent)
}

func hoursLabel(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}
