package gpuwatch

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

const (
	yLabelWidth    = 4
	minPlotWidth   = 8
	minPlotHeight  = 2
	minLegendSpace = 30
)

// termChart draws its series as a braille line plot. termui renders into an
// off-screen buffer which is converted to a styled string for the view.
type termChart struct {
	opts   ChartOptions
	series []*Series
	width  int
	height int
	view   string
}

// NewTermChart is the ChartFactory used by the dashboard
func NewTermChart(opts ChartOptions, series []*Series) Chart {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &termChart{
		opts:   opts,
		series: series,
		width:  60,
		height: 12,
	}
}

// Resize sets the outer dimensions and redraws when they changed
func (c *termChart) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width = width
	c.height = height
	c.Redraw()
}

// Redraw re-reads the bound series
func (c *termChart) Redraw() {
	c.view = c.render()
}

func (c *termChart) View() string {
	return c.view
}

func (c *termChart) render() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	title := titleStyle.Render(c.opts.YLabel)

	plotHeight := c.height - 2 // title + time axis
	legend := c.renderLegend(plotHeight + 1)
	if c.width-lipgloss.Width(legend) < minLegendSpace {
		legend = ""
	}
	plotWidth := c.width - yLabelWidth - lipgloss.Width(legend) - 1

	if plotWidth < minPlotWidth || plotHeight < minPlotHeight {
		return lipgloss.JoinVertical(lipgloss.Left, title, "Window too small")
	}
	if !c.drawable() {
		return lipgloss.JoinVertical(lipgloss.Left, title, "Waiting for data...")
	}

	plot := lipgloss.JoinHorizontal(lipgloss.Top,
		c.renderYLabels(plotHeight),
		c.renderPlot(plotWidth, plotHeight),
	)
	body := lipgloss.JoinVertical(lipgloss.Left, title, plot, c.renderTimeAxis(yLabelWidth+plotWidth))
	if legend == "" {
		return body
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, body, " ", legend)
}

// drawable reports whether every series has the two points a line needs
func (c *termChart) drawable() bool {
	if len(c.series) == 0 {
		return false
	}
	for _, s := range c.series {
		if len(s.Points) < 2 {
			return false
		}
	}
	return true
}

func (c *termChart) renderPlot(width, height int) string {
	span := c.opts.YMax - c.opts.YMin

	p := widgets.NewPlot()
	p.Border = false
	p.ShowAxes = false
	p.PlotType = widgets.LineChart
	p.Marker = widgets.MarkerBraille
	p.MaxVal = span
	p.Data = make([][]float64, 0, len(c.series))
	p.LineColors = make([]ui.Color, 0, len(c.series))
	for _, s := range c.series {
		// one point per column, newest on the right
		points := s.Points
		if len(points) > width {
			points = points[len(points)-width:]
		}
		values := make([]float64, len(points))
		for i, pt := range points {
			// the stored value is left alone; only the drawing is clamped
			values[i] = min(max(pt.Y-c.opts.YMin, 0), span)
		}
		p.Data = append(p.Data, values)
		p.LineColors = append(p.LineColors, termColor(s.Color))
	}

	// the block insets its drawing area by one cell on each side
	rect := image.Rect(-1, -1, width+1, height+1)
	p.SetRect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)
	buf := ui.NewBuffer(rect)
	p.Draw(buf)

	return bufferString(buf, width, height)
}

// bufferString converts the visible cells of a termui buffer into text,
// coloring runs of cells that share a foreground color
func bufferString(buf *ui.Buffer, width, height int) string {
	lines := make([]string, 0, height)
	for y := 0; y < height; y++ {
		var line, run strings.Builder
		runColor := ui.ColorClear
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == ui.ColorClear {
				line.WriteString(run.String())
			} else {
				line.WriteString(lipgloss.NewStyle().
					Foreground(lipgloss.Color(strconv.Itoa(int(runColor)))).
					Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < width; x++ {
			cell := buf.GetCell(image.Pt(x, y))
			r := cell.Rune
			color := cell.Style.Fg
			if r == 0 || r == ' ' {
				r = ' '
				color = ui.ColorClear
			}
			if color != runColor {
				flush()
				runColor = color
			}
			run.WriteRune(r)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func (c *termChart) renderYLabels(height int) string {
	labels := make([]string, height)
	for i := range labels {
		labels[i] = strings.Repeat(" ", yLabelWidth)
	}
	labels[0] = fmt.Sprintf("%*.0f ", yLabelWidth-1, c.opts.YMax)
	labels[height-1] = fmt.Sprintf("%*.0f ", yLabelWidth-1, c.opts.YMin)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(strings.Join(labels, "\n"))
}

// renderTimeAxis labels the oldest and newest timestamps of the first series
func (c *termChart) renderTimeAxis(width int) string {
	points := c.series[0].Points
	first := c.formatTime(points[0].X)
	last := c.formatTime(points[len(points)-1].X)

	axis := strings.Repeat(" ", yLabelWidth) + first
	gap := width - lipgloss.Width(axis) - lipgloss.Width(last)
	if gap > 0 {
		axis += strings.Repeat(" ", gap) + last
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(axis)
}

func (c *termChart) formatTime(ms float64) string {
	return time.UnixMilli(int64(ms)).In(c.opts.Location).Format(c.opts.TimeFormat)
}

func (c *termChart) renderLegend(height int) string {
	rows := make([][]string, 0, len(c.series))
	colors := make([]string, 0, len(c.series))
	for _, s := range c.series {
		value := "-"
		if last, ok := s.Last(); ok {
			value = fmt.Sprintf("%.1f%%", last.Y)
		}
		rows = append(rows, []string{"■ " + s.Key, value})
		colors = append(colors, s.Color)
	}
	return NewWrapTable().
		Headers("GPU", "Now").
		Rows(rows...).
		RowColors(colors...).
		MaxHeight(height).
		Render()
}

// termColor maps a 256-color code to a termui color
func termColor(code string) ui.Color {
	n, err := strconv.Atoi(code)
	if err != nil {
		return ui.ColorWhite
	}
	return ui.Color(n)
}
