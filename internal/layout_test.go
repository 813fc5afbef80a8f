package gpuwatch

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestGridSize(t *testing.T) {
	tests := []struct {
		n, columns, rows int
	}{
		{0, 1, 1},
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{7, 3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.columns, GridColumns(tt.n), "columns for %d", tt.n)
		assert.Equal(t, tt.rows, GridRows(tt.n), "rows for %d", tt.n)
	}
}

func TestWrapPanes(t *testing.T) {
	var panes []Pane
	for _, title := range []string{"a", "b", "c"} {
		panes = append(panes, NewPane(title, 10, 3).SetContent(strings.ToUpper(title)))
	}

	out := Wrap(2, panes...)
	// two rows of bordered panes, each 3 lines plus the border
	assert.Equal(t, 10, lipgloss.Height(out))
	assert.Equal(t, 24, lipgloss.Width(out))
	assert.Empty(t, Wrap(2))
}

func TestPaneContentSize(t *testing.T) {
	w, h := NewPane("host", 30, 10).ContentSize()
	assert.Equal(t, 30, w)
	assert.Equal(t, 9, h)

	w, h = NewPane("", 30, 10).ContentSize()
	assert.Equal(t, 30, w)
	assert.Equal(t, 10, h)
}

func TestTabSetSplitNeedsHeight(t *testing.T) {
	ts := NewTabSet().SetSize(40, 20)
	assert.True(t, ts.Split())

	ts.SetSize(40, 10)
	assert.False(t, ts.Split())

	ts.SetSize(40, 20).ToggleSplit()
	assert.False(t, ts.Split())
}

func TestTabSetCycles(t *testing.T) {
	ts := NewTabSet()
	assert.Equal(t, MetricUtil, ts.SelectedMetric())
	assert.Equal(t, MetricMemory, ts.NextTab().SelectedMetric())
	assert.Equal(t, MetricUtil, ts.NextTab().SelectedMetric())
	assert.Equal(t, MetricMemory, ts.PrevTab().SelectedMetric())
}
