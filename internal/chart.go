package gpuwatch

import "time"

// ChartOptions is the declarative configuration of one chart, fixed at construction
type ChartOptions struct {
	Host       string
	Metric     Metric
	YLabel     string
	YMin       float64
	YMax       float64
	TimeFormat string
	Location   *time.Location
}

// DefaultChartOptions returns the options of a host's chart for metric
func DefaultChartOptions(host string, metric Metric) ChartOptions {
	return ChartOptions{
		Host:       host,
		Metric:     metric,
		YLabel:     metric.Label(),
		YMin:       0,
		YMax:       100,
		TimeFormat: TIME_FORMAT,
		Location:   time.Local,
	}
}

// Chart draws a fixed list of series. The series are bound by reference:
// Redraw re-reads them in place.
type Chart interface {
	Resize(width, height int)
	Redraw()
	View() string
}

// ChartFactory builds a chart bound to series
type ChartFactory func(opts ChartOptions, series []*Series) Chart

// ChartPair holds the two charts of a host
type ChartPair struct {
	Util   Chart
	Memory Chart
}

// Get returns the chart of a metric
func (p ChartPair) Get(m Metric) Chart {
	if m == MetricMemory {
		return p.Memory
	}
	return p.Util
}
