package gpuwatch

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds the dashboard settings resolved from flags, environment and config file
type Config struct {
	Endpoints        []*url.URL
	Window           int
	MetricsAddr      string
	LogFile          string
	ReadLimit        int64
	HandshakeTimeout time.Duration
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", DEFAULT_ENDPOINT)
	v.SetDefault("window", 0)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_file", "gpuwatch.log")
	v.SetDefault("read_limit", READ_LIMIT)
	v.SetDefault("handshake_timeout", HandshakeDuration())
}

// LoadConfig reads and validates the configuration held by v
func LoadConfig(v *viper.Viper) (Config, error) {
	endpoints, err := NormalizeEndpoint(v.GetString("endpoint"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Endpoints:        endpoints,
		Window:           v.GetInt("window"),
		MetricsAddr:      v.GetString("metrics_addr"),
		LogFile:          v.GetString("log_file"),
		ReadLimit:        v.GetInt64("read_limit"),
		HandshakeTimeout: v.GetDuration("handshake_timeout"),
	}

	if cfg.Window < 0 {
		return Config{}, fmt.Errorf("window must not be negative, got %d", cfg.Window)
	}
	if cfg.ReadLimit <= 0 {
		return Config{}, fmt.Errorf("read_limit must be positive, got %d", cfg.ReadLimit)
	}
	if cfg.HandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("handshake_timeout must be positive, got %s", cfg.HandshakeTimeout)
	}

	return cfg, nil
}
