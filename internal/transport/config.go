package transport

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Path is where the host serves the WebSocket endpoint.
const Path = "/ws"

// State is the connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config configures a Sender.
type Config struct {
	Endpoint          string
	QueueSize         int
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration
	ReadTimeout       time.Duration
	PingInterval      time.Duration
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// DefaultConfig returns defaults for endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{Endpoint: endpoint}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 2 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.ReadTimeout {
		c.PingInterval = c.ReadTimeout / 3
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = time.Second
	}
	if c.MaxReconnectDelay < c.ReconnectDelay {
		c.MaxReconnectDelay = 30 * c.ReconnectDelay
	}
	return c
}

// Endpoint derives the WebSocket endpoint from the page location the
// renderer booted from: http://host:port/... becomes ws://host:port/ws.
func Endpoint(location *url.URL) string {
	scheme := "ws"
	if location.Scheme == "https" || location.Scheme == "wss" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: location.Host, Path: Path}).String()
}

// ValidateEndpoint checks that endpoint is a WebSocket URL and, when port
// is non-negative, that it targets that port.
func ValidateEndpoint(endpoint string, port int) error {
	if err := checkEndpoint(endpoint); err != nil {
		return err
	}
	if port < 0 {
		return nil
	}

	u, _ := url.Parse(endpoint)
	got := u.Port()
	if got == "" {
		got = "80"
		if u.Scheme == "wss" {
			got = "443"
		}
	}
	if got != strconv.Itoa(port) {
		return fmt.Errorf("endpoint %s does not match server port %d", endpoint, port)
	}
	return nil
}

func checkEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid endpoint %q: scheme must be ws or wss", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}
