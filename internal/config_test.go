package gpuwatch

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(testViper())
	require.NoError(t, err)

	assert.Equal(t, []string{DEFAULT_ENDPOINT}, urlStrings(cfg.Endpoints))
	assert.Equal(t, 0, cfg.Window)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "gpuwatch.log", cfg.LogFile)
	assert.Equal(t, int64(READ_LIMIT), cfg.ReadLimit)
	assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout)
}

func TestLoadConfigFromYAML(t *testing.T) {
	v := testViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
endpoint: gpu.lan:9000
window: 120
metrics_addr: ":9400"
handshake_timeout: 2s
`)))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"ws://gpu.lan:9000/gpu_status", "wss://gpu.lan:9000/gpu_status"}, urlStrings(cfg.Endpoints))
	assert.Equal(t, 120, cfg.Window)
	assert.Equal(t, ":9400", cfg.MetricsAddr)
	assert.Equal(t, 2*time.Second, cfg.HandshakeTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string]struct {
		key   string
		value interface{}
	}{
		"bad endpoint":    {"endpoint", "ftp://gpu.lan"},
		"negative window": {"window", -1},
		"zero read limit": {"read_limit", 0},
		"zero handshake":  {"handshake_timeout", "0s"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v := testViper()
			v.Set(tt.key, tt.value)
			_, err := LoadConfig(v)
			assert.Error(t, err)
		})
	}
}
