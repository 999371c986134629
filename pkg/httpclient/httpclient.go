// Package httpclient provides a shared, tuned HTTP client factory for
// probe traffic. Connection pooling is enabled so repeated probes against
// the same endpoint reuse connections, and redirects are never followed:
// the classification layer needs to see the redirect response itself.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/vaptprobe/vaptprobe/pkg/duration"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: ProbeTimeout).
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification, for targets
	// on self-signed staging certificates.
	InsecureSkipVerify bool

	// MaxIdleConns is the maximum idle connections across hosts (default: 100).
	MaxIdleConns int

	// MaxConnsPerHost caps connections per host (default: 25). The burst
	// probe raises this to its concurrency level.
	MaxConnsPerHost int

	// DisableKeepAlives disables connection reuse. The burst probe sets
	// this so each burst request exercises the target's limiter rather
	// than a single pooled connection.
	DisableKeepAlives bool
}

// DefaultConfig returns defaults tuned for probing a single endpoint.
func DefaultConfig() Config {
	return Config{
		Timeout:         duration.ProbeTimeout,
		MaxIdleConns:    100,
		MaxConnsPerHost: 25,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns a shared, pre-configured HTTP client. Safe for
// concurrent use. Probe packages should prefer Default() over creating
// their own clients so connections are pooled across probes.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates an HTTP client with the given configuration. Zero values
// are filled with defaults.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.ProbeTimeout
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 25
	}

	dialer := &net.Dialer{
		Timeout:   duration.DialTimeout,
		KeepAlive: duration.KeepAlive,
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     duration.IdleConnTimeout,
		DisableKeepAlives:   cfg.DisableKeepAlives,

		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   duration.TLSHandshakeTimeout,

		DialContext: dialer.DialContext,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// WithTimeout returns a Config based on DefaultConfig with the given
// timeout. Convenience for the common single-override case.
func WithTimeout(timeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	return cfg
}
