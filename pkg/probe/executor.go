// Package probe provides the HTTP probe executor: one crafted request per
// call, returning a normalized response envelope. Transport failures are
// classifiable outcomes, not errors: the absence of a server response is
// itself diagnostic.
package probe

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/httpclient"
	"github.com/vaptprobe/vaptprobe/pkg/iohelper"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

// Overrides adjusts a single request relative to the base target.
// Zero-value fields inherit from the target; override headers take
// precedence over base headers.
type Overrides struct {
	// Method replaces the target's method if non-empty.
	Method string

	// URL replaces the target's URL if non-empty (used for query-string
	// payload substitution).
	URL string

	// Headers are merged over the target's base headers. An empty string
	// value deletes the header from the request.
	Headers map[string]string

	// Body replaces the target's body if non-empty.
	Body string

	// Timeout bounds this request only; zero uses the client default.
	Timeout time.Duration
}

// Result is the raw outcome of one request/response pair. Immutable once
// created. Err is set (and StatusCode zero) when the request failed at
// the transport layer.
type Result struct {
	RequestMethod  string        `json:"request_method"`
	RequestURL     string        `json:"request_url"`
	RequestHeaders http.Header   `json:"request_headers,omitempty"`
	RequestBody    string        `json:"request_body,omitempty"`
	StatusCode     int           `json:"status_code,omitempty"`
	Header         http.Header   `json:"header,omitempty"`
	BodySnippet    string        `json:"body_snippet,omitempty"`
	BodyHash       uint64        `json:"body_hash,omitempty"`
	Latency        time.Duration `json:"latency,format:nano"`
	Err            error         `json:"-"`
	ErrString      string        `json:"error,omitempty"`
}

// Failed reports whether the request completed without a server response.
func (r *Result) Failed() bool { return r.Err != nil }

// Executor performs single HTTP requests against a target. Exactly one
// network call per Do invocation; retry policy, if any, belongs to the
// calling probe.
type Executor struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClient sets a custom HTTP client (the burst probe passes one with
// keep-alives disabled).
func WithClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithLogger sets a structured logger for transport diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an executor backed by the shared pooled client.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		client: httpclient.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do merges the overrides onto the base target and issues one request.
// It never returns a Go error for transport failures; those come back in
// the Result envelope so the caller can classify them.
func (e *Executor) Do(ctx context.Context, tgt *target.Target, ov Overrides) *Result {
	method := tgt.Method()
	if ov.Method != "" {
		method = ov.Method
	}
	rawURL := tgt.URL()
	if ov.URL != "" {
		rawURL = ov.URL
	}
	body := tgt.Body()
	if ov.Body != "" {
		body = ov.Body
	}

	headers := tgt.Headers()
	for k, v := range ov.Headers {
		if v == "" {
			headers.Del(k)
			continue
		}
		headers.Set(k, v)
	}
	if headers.Get("User-Agent") == "" {
		headers.Set("User-Agent", defaults.UserAgent)
	}

	if ov.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ov.Timeout)
		defer cancel()
	}

	res := &Result{
		RequestMethod:  method,
		RequestURL:     rawURL,
		RequestHeaders: headers,
		RequestBody:    body,
	}

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, nil)
	}
	if err != nil {
		res.Err = err
		res.ErrString = err.Error()
		return res
	}
	req.Header = headers

	start := time.Now()
	resp, err := e.client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		res.ErrString = err.Error()
		e.logger.Debug("probe request failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
		return res
	}
	defer iohelper.DrainAndClose(resp.Body)

	res.StatusCode = resp.StatusCode
	res.Header = resp.Header

	data, err := iohelper.ReadBody(resp.Body, int64(defaults.BodySnippetSize))
	if err != nil {
		// Keep the status and headers; body truncation is evidence enough.
		e.logger.Debug("probe body read failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
	}
	res.BodySnippet = string(data)
	res.BodyHash = murmur3.Sum64(data)

	return res
}
