package gpuwatch

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable wraps lipgloss table to support height-based wrapping
// When data exceeds maxHeight, it creates multiple tables side-by-side
type WrapTable struct {
	headers     []string
	rows        [][]string
	colors      []string
	maxHeight   int
	borderStyle lipgloss.Style
}

// NewWrapTable creates a new wrap table
func NewWrapTable() *WrapTable {
	return &WrapTable{
		borderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Headers sets the table headers
func (wt *WrapTable) Headers(headers ...string) *WrapTable {
	wt.headers = headers
	return wt
}

// Rows sets the table rows
func (wt *WrapTable) Rows(rows ...[]string) *WrapTable {
	wt.rows = rows
	return wt
}

// RowColors sets the foreground color of each row's first cell
func (wt *WrapTable) RowColors(colors ...string) *WrapTable {
	wt.colors = colors
	return wt
}

// MaxHeight sets the maximum height constraint
func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

// Render renders the table with wrapping if needed
func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return ""
	}

	// header (1 line) + borders (top + bottom + header separator = 3)
	rowsPerTable := wt.maxHeight - 4
	if rowsPerTable < 1 {
		rowsPerTable = 1
	}

	var tables []string
	for i := 0; i < len(wt.rows); i += rowsPerTable {
		end := min(i+rowsPerTable, len(wt.rows))
		tables = append(tables, wt.renderChunk(i, end))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

func (wt *WrapTable) renderChunk(start, end int) string {
	plain := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(wt.borderStyle).
		Headers(wt.headers...).
		Rows(wt.rows[start:end]...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 || col != 0 || start+row >= len(wt.colors) {
				return plain
			}
			return plain.Foreground(lipgloss.Color(wt.colors[start+row]))
		}).
		String()
}

// String is a convenience method that calls Render
func (wt *WrapTable) String() string {
	return wt.Render()
}
