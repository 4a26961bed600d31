package formatter

import (
	"strings"

	"github.com/phrazzld/taskhub/internal/domain/timeline"
)

const nameWidth = 28

// FormatTimeline draws the Gantt grid with one character per column. The
// current column is marked in the header.
func FormatTimeline(tl timeline.Timeline) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Timeline " + itoa(tl.Year) + " (" + string(tl.Granularity) + ")"))
	b.WriteString("\n\n")

	b.WriteString(pad("", nameWidth))
	for i, col := range tl.Columns {
		if col.Index == tl.CurrentIndex {
			b.WriteString(StyleRed.Render("▼"))
			continue
		}
		b.WriteString(columnMark(tl.Columns, i))
	}
	b.WriteString("\n")

	if len(tl.Projects) == 0 {
		b.WriteString(StyleDim.Render("No tasks match the filters."))
		b.WriteString("\n")
		return b.String()
	}

	for _, p := range tl.Projects {
		b.WriteString(StyleHeader.Render(pad(p.Name, nameWidth-6)))
		b.WriteString(" " + StyleDim.Render(pad(itoa(p.Progress)+"%", 5)))
		b.WriteString("\n")
		for _, m := range p.Modules {
			b.WriteString(StyleBlue.Render(pad("  "+m.Name, nameWidth-6)))
			b.WriteString(" " + StyleDim.Render(pad(itoa(m.Progress)+"%", 5)))
			b.WriteString("\n")
			for _, row := range m.Tasks {
				b.WriteString(pad("    "+row.Task.Title, nameWidth))
				b.WriteString(renderBar(row.Bar, len(tl.Columns)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func renderBar(bar *timeline.Bar, columns int) string {
	if bar == nil {
		return StyleDim.Render(strings.Repeat("·", columns))
	}
	cells := make([]string, columns)
	for i := range cells {
		switch {
		case i < bar.StartIndex || i > bar.EndIndex:
			cells[i] = StyleDim.Render("·")
		case i == bar.StartIndex && bar.ClippedStart:
			cells[i] = StyleGreen.Render("◀")
		case i == bar.EndIndex && bar.ClippedEnd:
			cells[i] = StyleGreen.Render("▶")
		default:
			cells[i] = StyleGreen.Render("█")
		}
	}
	return strings.Join(cells, "")
}

// columnMark is the first letter of a month, shown on the first column of
// each month group.
func columnMark(cols []timeline.Column, i int) string {
	label := cols[i].Label
	if cols[i].Group != "" && !strings.HasPrefix(cols[i].Group, "Q") {
		if i > 0 && cols[i-1].Group == cols[i].Group {
			return " "
		}
		label = cols[i].Group
	}
	if label == "" {
		return " "
	}
	return string([]rune(label)[:1])
}
