package gpuwatch

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	StatusInitial = "initial"
	StatusLatest  = "latest"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownStatus    = errors.New("unknown status")
	ErrInvalidPayload   = errors.New("invalid payload")
)

// Envelope is a single frame received from the telemetry server
type Envelope struct {
	Status string              `json:"status"`
	Data   jsoniter.RawMessage `json:"data"`
}

// GPUHistory is the full history of one GPU delivered by an "initial" message.
// All slices have the same length.
type GPUHistory struct {
	TimeStamp      []float64 `json:"time_stamp"`
	UtilizationGPU []float64 `json:"utilization_gpu"`
	MemoryUsed     []float64 `json:"memory_used"`
	MemoryTotal    []float64 `json:"memory_total"`
	GPUName        string    `json:"gpu_name"`
}

// GPUReading is the newest sample of one GPU delivered by a "latest" message
type GPUReading struct {
	TimeStamp      float64 `json:"time_stamp"`
	UtilizationGPU float64 `json:"utilization_gpu"`
	MemoryUsed     float64 `json:"memory_used"`
	MemoryTotal    float64 `json:"memory_total"`
	GPUName        string  `json:"gpu_name,omitempty"`
}

// Snapshot maps hostname -> GPU index -> history
type Snapshot map[string]map[string]GPUHistory

// Update maps hostname -> GPU index -> newest reading
type Update map[string]map[string]GPUReading

// DecodeEnvelope parses a raw frame into its status and undecoded payload
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if env.Status == "" {
		return Envelope{}, fmt.Errorf("%w: missing status", ErrMalformedMessage)
	}
	return env, nil
}

// DecodeSnapshot parses the payload of an "initial" message
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: initial: missing data", ErrInvalidPayload)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: initial: %v", ErrInvalidPayload, err)
	}
	return snap, nil
}

// DecodeUpdate parses the payload of a "latest" message
func DecodeUpdate(data []byte) (Update, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: latest: missing data", ErrInvalidPayload)
	}
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: latest: %v", ErrInvalidPayload, err)
	}
	return u, nil
}

// MemoryPercent converts a memory reading to a percentage of the total
func MemoryPercent(used, total float64) float64 {
	return 100 * used / total
}

func (h GPUHistory) validate() error {
	n := len(h.TimeStamp)
	if len(h.UtilizationGPU) != n || len(h.MemoryUsed) != n || len(h.MemoryTotal) != n {
		return fmt.Errorf("array lengths differ (time_stamp=%d utilization_gpu=%d memory_used=%d memory_total=%d)",
			n, len(h.UtilizationGPU), len(h.MemoryUsed), len(h.MemoryTotal))
	}
	for i, total := range h.MemoryTotal {
		if total <= 0 {
			return fmt.Errorf("memory_total[%d] is %v", i, total)
		}
	}
	return nil
}

func (r GPUReading) validate() error {
	if r.MemoryTotal <= 0 {
		return fmt.Errorf("memory_total is %v", r.MemoryTotal)
	}
	return nil
}
