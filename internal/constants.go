package gpuwatch

import (
	"time"
)

const (
	// DEFAULT_ENDPOINT is the telemetry websocket the dashboard connects to when none is configured
	DEFAULT_ENDPOINT = "ws://localhost:8000/gpu_status"

	// DEFAULT_PATH and DEFAULT_PORT complete endpoints given as a bare host
	DEFAULT_PATH = "/gpu_status"
	DEFAULT_PORT = "8000"

	// DEFAULT_WINDOW is the series length used when a snapshot delivers no samples for a GPU
	DEFAULT_WINDOW = 60

	// HANDSHAKE_TIMEOUT is the websocket handshake timeout in seconds
	HANDSHAKE_TIMEOUT = 10

	// READ_LIMIT caps a single websocket frame; initial snapshots carry the full history
	READ_LIMIT = 64 << 20

	// TIME_FORMAT renders chart timestamps as "Jan  2 15:04:05"
	TIME_FORMAT = "Jan _2 15:04:05"
)

const (
	UtilLabel   = "GPU Utilization (%)"
	MemoryLabel = "Memory Consumption (%)"
)

// Palette holds 256-color codes for GPU series, indexed by GPU index.
// The first three are the closest matches of #00ff00, #ff007f and #ffa500.
var Palette = []string{"46", "198", "214", "39", "226", "129", "51", "208"}

// HandshakeDuration returns the handshake timeout as a time.Duration
func HandshakeDuration() time.Duration {
	return time.Duration(HANDSHAKE_TIMEOUT) * time.Second
}

// ColorFor returns the palette color of a GPU at position pos with key gpuIndex
func ColorFor(gpuIndex string, pos int) string {
	if n, ok := parseIndex(gpuIndex); ok {
		return Palette[n%len(Palette)]
	}
	return Palette[pos%len(Palette)]
}
