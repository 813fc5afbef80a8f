package gpuwatch

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Metric names one of the two charts drawn per host
type Metric string

const (
	MetricUtil   Metric = "util"
	MetricMemory Metric = "memory"
)

// AllMetrics lists the per-host charts in display order
var AllMetrics = []Metric{MetricUtil, MetricMemory}

// Label returns the Y axis label of the metric's chart
func (m Metric) Label() string {
	if m == MetricMemory {
		return MemoryLabel
	}
	return UtilLabel
}

// Point is one chart sample; X is a unix timestamp in milliseconds
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series backs one line of a chart
type Series struct {
	Key    string  `json:"key"`
	Color  string  `json:"color"`
	Points []Point `json:"values"`

	window int
}

// Window returns the maximum number of points the series keeps
func (s *Series) Window() int {
	return s.window
}

// Last returns the newest point of the series
func (s *Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// push appends p, dropping the oldest point once the window is full
func (s *Series) push(p Point) {
	if len(s.Points) < s.window {
		s.Points = append(s.Points, p)
		return
	}
	copy(s.Points, s.Points[1:])
	s.Points[len(s.Points)-1] = p
}

// HostSeries holds the chart series of one host. Util[i] and Memory[i]
// belong to the same GPU.
type HostSeries struct {
	Util   []*Series `json:"util"`
	Memory []*Series `json:"memory"`

	// GPU index -> position in Util/Memory, fixed when the snapshot is applied
	positions map[string]int
}

// Series returns the series list of a metric
func (h *HostSeries) Series(m Metric) []*Series {
	if m == MetricMemory {
		return h.Memory
	}
	return h.Util
}

// GPUs returns the GPU indices of the host in chart order
func (h *HostSeries) GPUs() []string {
	gpus := make([]string, len(h.positions))
	for gpu, pos := range h.positions {
		gpus[pos] = gpu
	}
	return gpus
}

// Result reports what a message changed
type Result struct {
	// Dirty lists the hosts whose series changed, sorted
	Dirty []string
	// Skipped lists "host/gpu" readings that matched no series, sorted
	Skipped []string
}

// Store is the chart series store. Mutations are not safe for concurrent use;
// readers may share it once no mutation is running.
type Store struct {
	window int
	hosts  map[string]*HostSeries
	cache  hostCache
}

// NewStore creates an empty store. A window of 0 keeps every series at the
// length its snapshot delivered; a positive window caps every series.
func NewStore(window int) *Store {
	s := &Store{
		window: window,
		hosts:  make(map[string]*HostSeries),
	}
	s.cache.get(s.hosts)
	return s
}

// Host returns the series of a host
func (s *Store) Host(name string) (*HostSeries, bool) {
	h, ok := s.hosts[name]
	return h, ok
}

// Hosts returns the known hostnames, sorted
func (s *Store) Hosts() []string {
	return s.cache.get(s.hosts)
}

// Len returns the number of hosts in the store
func (s *Store) Len() int {
	return len(s.hosts)
}

// ApplySnapshot replaces the whole store with the histories of snap.
// Nothing is changed when any GPU history is invalid.
func (s *Store) ApplySnapshot(snap Snapshot) (Result, error) {
	for host, gpus := range snap {
		for gpu, history := range gpus {
			if err := history.validate(); err != nil {
				return Result{}, fmt.Errorf("%w: %s/%s: %v", ErrInvalidPayload, host, gpu, err)
			}
		}
	}

	hosts := make(map[string]*HostSeries, len(snap))
	for host, gpus := range snap {
		hosts[host] = s.buildHost(gpus)
	}
	s.hosts = hosts
	s.cache.clear()

	return Result{Dirty: slices.Clone(s.Hosts())}, nil
}

func (s *Store) buildHost(gpus map[string]GPUHistory) *HostSeries {
	indices := make([]string, 0, len(gpus))
	for gpu := range gpus {
		indices = append(indices, gpu)
	}
	slices.SortFunc(indices, compareIndex)

	hs := &HostSeries{
		Util:      make([]*Series, 0, len(indices)),
		Memory:    make([]*Series, 0, len(indices)),
		positions: make(map[string]int, len(indices)),
	}
	for pos, gpu := range indices {
		history := gpus[gpu]

		util := make([]Point, 0, len(history.TimeStamp))
		memory := make([]Point, 0, len(history.TimeStamp))
		for i, ts := range history.TimeStamp {
			util = append(util, Point{X: ts * 1000, Y: history.UtilizationGPU[i]})
			memory = append(memory, Point{X: ts * 1000, Y: MemoryPercent(history.MemoryUsed[i], history.MemoryTotal[i])})
		}

		window := s.window
		if window == 0 {
			window = len(util)
		}
		if window == 0 {
			window = DEFAULT_WINDOW
		}
		// keep the newest points when the snapshot is longer than the window
		if len(util) > window {
			util = util[len(util)-window:]
			memory = memory[len(memory)-window:]
		}

		key := fmt.Sprintf("%s(%s)", history.GPUName, gpu)
		color := ColorFor(gpu, pos)
		hs.Util = append(hs.Util, &Series{Key: key, Color: color, Points: util, window: window})
		hs.Memory = append(hs.Memory, &Series{Key: key, Color: color, Points: memory, window: window})
		hs.positions[gpu] = pos
	}
	return hs
}

// ApplyUpdate appends one reading per host/GPU. Readings for hosts or GPUs
// the last snapshot did not deliver are skipped. Nothing is changed when any
// reading is invalid.
func (s *Store) ApplyUpdate(u Update) (Result, error) {
	for host, gpus := range u {
		for gpu, reading := range gpus {
			if err := reading.validate(); err != nil {
				return Result{}, fmt.Errorf("%w: %s/%s: %v", ErrInvalidPayload, host, gpu, err)
			}
		}
	}

	var res Result
	for host, gpus := range u {
		hs, ok := s.hosts[host]
		if !ok {
			for gpu := range gpus {
				res.Skipped = append(res.Skipped, host+"/"+gpu)
			}
			continue
		}

		applied := false
		for gpu, reading := range gpus {
			pos, ok := hs.positions[gpu]
			if !ok {
				res.Skipped = append(res.Skipped, host+"/"+gpu)
				continue
			}
			x := reading.TimeStamp * 1000
			hs.Util[pos].push(Point{X: x, Y: reading.UtilizationGPU})
			hs.Memory[pos].push(Point{X: x, Y: MemoryPercent(reading.MemoryUsed, reading.MemoryTotal)})
			applied = true
		}
		if applied {
			res.Dirty = append(res.Dirty, host)
		}
	}

	slices.Sort(res.Dirty)
	slices.Sort(res.Skipped)
	return res, nil
}

// Export returns a deep copy of the store
func (s *Store) Export() map[string]HostSeries {
	out := make(map[string]HostSeries, len(s.hosts))
	for name, hs := range s.hosts {
		out[name] = HostSeries{
			Util:      copySeries(hs.Util),
			Memory:    copySeries(hs.Memory),
			positions: maps.Clone(hs.positions),
		}
	}
	return out
}

func copySeries(in []*Series) []*Series {
	out := make([]*Series, len(in))
	for i, s := range in {
		c := *s
		c.Points = slices.Clone(s.Points)
		out[i] = &c
	}
	return out
}

// compareIndex orders GPU indices numerically, non-numeric indices last
func compareIndex(a, b string) int {
	na, okA := parseIndex(a)
	nb, okB := parseIndex(b)
	switch {
	case okA && okB:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return cmp.Compare(a, b)
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
