package gpuwatch

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pane represents a bordered panel in the dashboard, one per host.
//
//	pane := NewPane("gpu-node-1", 80, 24).
//	    SetContent(tabSet.Render()).
//	    SetFocused(true)
//	fmt.Println(pane.Render())
type Pane struct {
	title       string
	content     string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
}

// NewPane creates a new pane with default styling
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
	}
}

// SetContent sets the pane content
func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetFocused highlights the border of the selected pane
func (p Pane) SetFocused(focused bool) Pane {
	if focused {
		p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color("170"))
	} else {
		p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color("240"))
	}
	return p
}

// ContentSize returns the space left for content inside border and title
func (p Pane) ContentSize() (int, int) {
	height := p.height
	if p.title != "" {
		height--
	}
	return max(p.width, 0), max(height, 0)
}

// Render draws the pane
func (p Pane) Render() string {
	var b strings.Builder

	if p.title != "" {
		b.WriteString(p.titleStyle.Render(p.title) + "\n")
	}
	b.WriteString(p.content)

	// Width/Height exclude the border; MaxHeight clips overflowing content
	return p.borderStyle.
		Width(p.width).
		Height(p.height).
		MaxHeight(p.height + 2).
		Render(b.String())
}
