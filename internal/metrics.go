package gpuwatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors are the client's own Prometheus metrics. A nil *Collectors
// records nothing.
type Collectors struct {
	Messages  *prometheus.CounterVec
	Samples   *prometheus.CounterVec
	Redraws   *prometheus.CounterVec
	Hosts     prometheus.Gauge
	Connected prometheus.Gauge
}

// NewCollectors creates the collectors and registers them with reg
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpuwatch_messages_total",
				Help: "Telemetry messages handled, by status and result",
			},
			[]string{"status", "result"},
		),
		Samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpuwatch_samples_total",
				Help: "GPU readings from latest messages, by result",
			},
			[]string{"result"},
		),
		Redraws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpuwatch_redraws_total",
				Help: "Chart redraws, by metric",
			},
			[]string{"metric"},
		),
		Hosts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gpuwatch_hosts",
				Help: "Hosts in the series store",
			},
		),
		Connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gpuwatch_connected",
				Help: "1 while the telemetry websocket is open",
			},
		),
	}
	reg.MustRegister(c.Messages, c.Samples, c.Redraws, c.Hosts, c.Connected)
	return c
}

func (c *Collectors) message(status, result string) {
	if c == nil {
		return
	}
	c.Messages.WithLabelValues(status, result).Inc()
}

func (c *Collectors) samples(result string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.Samples.WithLabelValues(result).Add(float64(n))
}

func (c *Collectors) redraw(m Metric) {
	if c == nil {
		return
	}
	c.Redraws.WithLabelValues(string(m)).Inc()
}

func (c *Collectors) hosts(n int) {
	if c == nil {
		return
	}
	c.Hosts.Set(float64(n))
}

// SetConnected records the websocket state
func (c *Collectors) SetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.Connected.Set(1)
	} else {
		c.Connected.Set(0)
	}
}
