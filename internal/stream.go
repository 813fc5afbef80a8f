package gpuwatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// StreamHandler receives the events of a telemetry stream. All calls come
// from the goroutine running Stream.Run, in arrival order.
type StreamHandler interface {
	Connected(endpoint string)
	Frame(data []byte)
	Disconnected(err error)
}

// StreamOptions tunes the websocket connection
type StreamOptions struct {
	HandshakeTimeout time.Duration
	ReadLimit        int64
}

// Stream is a single long-lived websocket connection to the telemetry server.
// It does not reconnect: once the connection is lost Run returns.
type Stream struct {
	endpoints []*url.URL
	dialer    *websocket.Dialer
	readLimit int64
}

// NewStream creates a stream that dials the first reachable endpoint
func NewStream(endpoints []*url.URL, opts StreamOptions) *Stream {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = HandshakeDuration()
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = READ_LIMIT
	}
	return &Stream{
		endpoints: endpoints,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		readLimit: opts.ReadLimit,
	}
}

// Run connects and delivers frames to h until the connection closes or ctx
// is cancelled. Disconnected is called exactly once before Run returns; its
// error is nil when ctx was cancelled or the server closed normally.
func (s *Stream) Run(ctx context.Context, h StreamHandler) error {
	conn, endpoint, err := s.dial(ctx)
	if err != nil {
		log.Printf("Telemetry connection failed: %v", err)
		h.Disconnected(err)
		return err
	}
	defer conn.Close()

	conn.SetReadLimit(s.readLimit)
	log.Printf("connected: %s", endpoint)
	h.Connected(endpoint)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			if err != nil {
				log.Printf("disconnected: %s: %v", endpoint, err)
			} else {
				log.Printf("disconnected: %s", endpoint)
			}
			h.Disconnected(err)
			return err
		}
		if kind != websocket.TextMessage {
			log.Printf("Ignoring non-text frame (%d bytes)", len(data))
			continue
		}
		h.Frame(data)
	}
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, string, error) {
	if len(s.endpoints) == 0 {
		return nil, "", errors.New("no telemetry endpoint configured")
	}

	var errs []error
	for _, u := range s.endpoints {
		log.Printf("Trying telemetry endpoint: %s", u)
		conn, resp, err := s.dialer.DialContext(ctx, u.String(), nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err == nil {
			return conn, u.String(), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", u, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", errors.Join(errs...)
}

// Endpoint returns the first endpoint the stream dials
func (s *Stream) Endpoint() string {
	if len(s.endpoints) == 0 {
		return ""
	}
	return s.endpoints[0].String()
}
