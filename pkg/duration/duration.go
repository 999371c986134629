// Package duration provides named duration constants used across the
// engine, so timeouts are consistent and greppable.
package duration

import "time"

const (
	// ProbeTimeout is the default per-request timeout for category
	// probes (10s), matching typical API gateway upstream timeouts.
	ProbeTimeout = 10 * time.Second

	// BurstRequestTimeout is the per-request timeout inside the
	// rate-limit burst (5s). Shorter than ProbeTimeout so one hung
	// connection cannot stall the whole burst.
	BurstRequestTimeout = 5 * time.Second

	// DialTimeout is the TCP connect timeout (10s).
	DialTimeout = 10 * time.Second

	// TLSHandshakeTimeout bounds the TLS handshake (10s).
	TLSHandshakeTimeout = 10 * time.Second

	// IdleConnTimeout is how long idle pooled connections are kept (90s).
	IdleConnTimeout = 90 * time.Second

	// KeepAlive is the TCP keep-alive interval (30s).
	KeepAlive = 30 * time.Second

	// MetricsShutdown bounds the Prometheus hook's server shutdown (5s).
	MetricsShutdown = 5 * time.Second

	// SlowResponse is the latency above which a burst response is
	// recorded as an outlier in evidence (2s).
	SlowResponse = 2 * time.Second
)
