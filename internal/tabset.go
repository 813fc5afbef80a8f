package gpuwatch

import (
	"github.com/charmbracelet/lipgloss"
)

// minSplitHeight is the smallest chart height worth showing both charts stacked
const minSplitHeight = 8

// TabSet shows the charts of one host, either stacked or one tab at a time
type TabSet struct {
	selectedTab int
	split       bool
	width       int
	height      int
}

// NewTabSet creates a TabSet showing both charts stacked
func NewTabSet() *TabSet {
	return &TabSet{
		split:  true,
		width:  40,
		height: 10,
	}
}

// SetSize sets the dimensions for rendering
func (ts *TabSet) SetSize(width, height int) *TabSet {
	ts.width = width
	ts.height = height
	return ts
}

// NextTab moves to the next tab (wraps around)
func (ts *TabSet) NextTab() *TabSet {
	ts.selectedTab = (ts.selectedTab + 1) % len(AllMetrics)
	return ts
}

// PrevTab moves to the previous tab (wraps around)
func (ts *TabSet) PrevTab() *TabSet {
	ts.selectedTab = (ts.selectedTab - 1 + len(AllMetrics)) % len(AllMetrics)
	return ts
}

// ToggleSplit switches between stacked charts and tabs
func (ts *TabSet) ToggleSplit() *TabSet {
	ts.split = !ts.split
	return ts
}

// SelectedMetric returns the metric of the active tab
func (ts *TabSet) SelectedMetric() Metric {
	return AllMetrics[ts.selectedTab]
}

// Split reports whether both charts are shown at the current size
func (ts *TabSet) Split() bool {
	return ts.split && ts.height >= 2*minSplitHeight
}

// Render renders the host's charts
func (ts *TabSet) Render(charts ChartPair) string {
	if ts.Split() {
		chartHeight := ts.height / 2
		views := make([]string, 0, len(AllMetrics))
		for _, metric := range AllMetrics {
			chart := charts.Get(metric)
			chart.Resize(ts.width, chartHeight)
			views = append(views, chart.View())
		}
		return lipgloss.JoinVertical(lipgloss.Left, views...)
	}

	tabs := ts.renderTabs()
	chart := charts.Get(ts.SelectedMetric())
	chart.Resize(ts.width, ts.height-lipgloss.Height(tabs))
	return lipgloss.JoinVertical(lipgloss.Left, tabs, chart.View())
}

// renderTabs renders the tab navigation bar
func (ts *TabSet) renderTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Background(lipgloss.Color("235")).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("170"))

	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("236"))

	var renderedTabs []string
	for i, metric := range AllMetrics {
		label := "Utilization"
		if metric == MetricMemory {
			label = "Memory"
		}

		if i == ts.selectedTab {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(label))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}
