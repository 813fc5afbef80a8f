package gpuwatch

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// NormalizeEndpoint turns a user supplied endpoint into the websocket URLs
// to try, in order. Schemes http/https map to ws/wss; a missing scheme yields
// both ws and wss candidates. A missing path becomes DEFAULT_PATH and a bare
// host gets DEFAULT_PORT.
func NormalizeEndpoint(raw string) ([]*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty endpoint")
	}

	explicit := strings.Contains(raw, "://")
	if !explicit {
		raw = "ws://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", raw)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("invalid endpoint %q: unsupported scheme %q", raw, u.Scheme)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = DEFAULT_PATH
	}
	if !explicit && u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), DEFAULT_PORT)
	}

	if explicit {
		return []*url.URL{u}, nil
	}

	// Schemes to try: plain first, the local default server speaks ws
	secure := *u
	secure.Scheme = "wss"
	return []*url.URL{u, &secure}, nil
}
