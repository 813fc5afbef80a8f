package gpuwatch

import (
	"github.com/charmbracelet/lipgloss"
)

// Horizontal renders panes side by side
func Horizontal(panes ...Pane) string {
	if len(panes) == 0 {
		return ""
	}

	views := make([]string, len(panes))
	for i, pane := range panes {
		views[i] = pane.Render()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// Wrap renders panes in rows of the given number of columns
func Wrap(columns int, panes ...Pane) string {
	if len(panes) == 0 {
		return ""
	}
	columns = max(columns, 1)

	var rows []string
	for i := 0; i < len(panes); i += columns {
		end := min(i+columns, len(panes))
		rows = append(rows, Horizontal(panes[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// GridColumns returns the number of columns used for n panes
func GridColumns(n int) int {
	if n <= 1 {
		return 1
	} else if n <= 4 {
		return 2
	} else {
		return 3
	}
}

// GridRows returns the number of rows needed for n panes
func GridRows(n int) int {
	columns := GridColumns(n)
	return max((n+columns-1)/columns, 1)
}
