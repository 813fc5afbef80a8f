package gpuwatch

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Monitor owns the series store and the chart handles built on top of it.
// HandleMessage must be called from a single goroutine; Export and the
// read-only accessors used by the HTTP server may be called concurrently.
type Monitor struct {
	mu       sync.RWMutex
	store    *Store
	charts   map[string]ChartPair
	newChart ChartFactory
	stats    *Collectors

	handled   atomic.Int64
	connected atomic.Bool
}

// NewMonitor creates a monitor drawing its charts with newChart
func NewMonitor(store *Store, newChart ChartFactory, stats *Collectors) *Monitor {
	return &Monitor{
		store:    store,
		charts:   make(map[string]ChartPair),
		newChart: newChart,
		stats:    stats,
	}
}

// HandleMessage decodes one frame and applies it. A failing message leaves
// the store and the charts untouched.
func (m *Monitor) HandleMessage(raw []byte) error {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		m.stats.message("", "error")
		return err
	}

	switch env.Status {
	case StatusInitial:
		snap, err := DecodeSnapshot(env.Data)
		if err == nil {
			err = m.HandleSnapshot(snap)
		}
		if err != nil {
			m.stats.message(env.Status, "error")
			return err
		}
	case StatusLatest:
		u, err := DecodeUpdate(env.Data)
		if err == nil {
			err = m.HandleUpdate(u)
		}
		if err != nil {
			m.stats.message(env.Status, "error")
			return err
		}
	default:
		m.stats.message("unknown", "error")
		return fmt.Errorf("%w: %q", ErrUnknownStatus, env.Status)
	}

	m.stats.message(env.Status, "ok")
	m.handled.Add(1)
	return nil
}

// HandleSnapshot seeds the store from snap and builds one chart per host and metric
func (m *Monitor) HandleSnapshot(snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.store.ApplySnapshot(snap)
	if err != nil {
		return err
	}

	charts := make(map[string]ChartPair, len(res.Dirty))
	for _, host := range res.Dirty {
		hs, _ := m.store.Host(host)
		charts[host] = ChartPair{
			Util:   m.newChart(DefaultChartOptions(host, MetricUtil), hs.Util),
			Memory: m.newChart(DefaultChartOptions(host, MetricMemory), hs.Memory),
		}
	}
	m.charts = charts
	m.stats.hosts(m.store.Len())

	log.Printf("Initial snapshot: %d host(s)", len(res.Dirty))
	m.redraw(res.Dirty)
	return nil
}

// HandleUpdate appends the newest readings and redraws the hosts they changed
func (m *Monitor) HandleUpdate(u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.store.ApplyUpdate(u)
	if err != nil {
		return err
	}

	applied := 0
	for _, gpus := range u {
		applied += len(gpus)
	}
	applied -= len(res.Skipped)
	m.stats.samples("applied", applied)
	m.stats.samples("skipped", len(res.Skipped))
	if len(res.Skipped) > 0 {
		log.Printf("Skipped readings without a series: %s", strings.Join(res.Skipped, ", "))
	}

	m.redraw(res.Dirty)
	return nil
}

// redraw asks the charts of the dirty hosts to re-read their series
func (m *Monitor) redraw(dirty []string) {
	for _, host := range dirty {
		pair, ok := m.charts[host]
		if !ok {
			continue
		}
		for _, metric := range AllMetrics {
			pair.Get(metric).Redraw()
			m.stats.redraw(metric)
		}
	}
}

// Hosts returns the hostnames that have charts, sorted
func (m *Monitor) Hosts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.store.Hosts())
}

// Charts returns the chart handles of a host
func (m *Monitor) Charts(host string) (ChartPair, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pair, ok := m.charts[host]
	return pair, ok
}

// SeriesKeys returns the legend keys of a host's GPUs in chart order
func (m *Monitor) SeriesKeys(host string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hs, ok := m.store.Host(host)
	if !ok {
		return nil
	}
	keys := make([]string, len(hs.Util))
	for i, s := range hs.Util {
		keys[i] = s.Key
	}
	return keys
}

// Export returns a deep copy of the series store
func (m *Monitor) Export() map[string]HostSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Export()
}

// Handled returns the number of messages applied successfully
func (m *Monitor) Handled() int64 {
	return m.handled.Load()
}

// SetConnected records the websocket state
func (m *Monitor) SetConnected(connected bool) {
	m.connected.Store(connected)
	m.stats.SetConnected(connected)
}

// Connected reports whether the websocket is open
func (m *Monitor) Connected() bool {
	return m.connected.Load()
}
