package progress

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaptprobe/vaptprobe/pkg/duration"
	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

// Compile-time interface check.
var _ Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes probe metrics for Prometheus scraping. It starts
// an HTTP server serving the configured path and updates counters and
// histograms from progress events.
type PrometheusHook struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     PrometheusOptions

	requestsTotal *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latencySecs   *prometheus.HistogramVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string
}

// NewPrometheusHook creates a hook and starts its metrics server. The
// server runs until Close() is called.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = 9090
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}

	// Custom registry; don't pollute the default one.
	registry := prometheus.NewRegistry()
	h := &PrometheusHook{registry: registry, opts: opts}

	h.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaptprobe_requests_total",
			Help: "Total probe requests executed",
		},
		[]string{"category"},
	)
	h.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaptprobe_findings_total",
			Help: "Total findings recorded",
		},
		[]string{"category", "severity", "status"},
	)
	h.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaptprobe_transport_errors_total",
			Help: "Total requests that failed at the transport layer",
		},
		[]string{"category"},
	)
	h.latencySecs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vaptprobe_response_time_seconds",
			Help:    "Response time distribution",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"category"},
	)

	for _, c := range []prometheus.Collector{
		h.requestsTotal, h.findingsTotal, h.errorsTotal, h.latencySecs,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("progress: register metric: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle(opts.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	h.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: mux,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("metrics server error", slog.String("error", err.Error()))
		}
	}()

	return h, nil
}

// OnEvent updates metrics from a progress event.
func (h *PrometheusHook) OnEvent(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	cat := string(ev.Category)
	switch ev.Stage {
	case StageRequest:
		h.requestsTotal.WithLabelValues(cat).Inc()
		if ev.Transport {
			h.errorsTotal.WithLabelValues(cat).Inc()
		}
		if ev.Latency > 0 {
			h.latencySecs.WithLabelValues(cat).Observe(ev.Latency.Seconds())
		}
	case StageFinding:
		if ev.Finding != nil {
			h.findingsTotal.WithLabelValues(cat,
				string(ev.Finding.Severity), string(ev.Finding.Status)).Inc()
		}
	}
}

// MetricsAddr returns the address where metrics are served.
func (h *PrometheusHook) MetricsAddr() string {
	return fmt.Sprintf("http://localhost:%d%s", h.opts.Port, h.opts.Path)
}

// Close shuts down the metrics server.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), duration.MetricsShutdown)
	defer cancel()
	return h.server.Shutdown(ctx)
}

// Categories returns the categories this hook labels metrics with.
// Exposed for dashboards that pre-create panels per category.
func (h *PrometheusHook) Categories() []finding.Category {
	return finding.Categories()
}
