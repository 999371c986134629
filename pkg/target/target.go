// Package target defines the immutable probe target and its
// construction-time validation. A Target that survives New is guaranteed
// well-formed; probes never re-validate it.
package target

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Target is the immutable input to a probe run: one endpoint, one method,
// optional base headers and body. Accessors return copies so callers
// cannot mutate shared state between concurrent probes.
type Target struct {
	rawURL  string
	parsed  *url.URL
	method  string
	headers http.Header
	body    string
}

// New validates the endpoint and method and returns an immutable Target.
// Validation failures wrap ErrMalformed and are raised before any probe
// runs; partial execution against a bad target is never possible.
func New(endpoint, method string, headers map[string]string, body string) (*Target, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, endpoint)
	}

	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}

	return &Target{
		rawURL:  endpoint,
		parsed:  u,
		method:  method,
		headers: h,
		body:    body,
	}, nil
}

// URL returns the endpoint URL string.
func (t *Target) URL() string { return t.rawURL }

// Parsed returns a copy of the parsed endpoint URL.
func (t *Target) Parsed() *url.URL {
	u := *t.parsed
	return &u
}

// Method returns the HTTP method.
func (t *Target) Method() string { return t.method }

// Headers returns a copy of the base header map.
func (t *Target) Headers() http.Header {
	h := make(http.Header, len(t.headers))
	for k, vs := range t.headers {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	return h
}

// Body returns the base request body, empty if none.
func (t *Target) Body() string { return t.body }

// HasQuery reports whether the endpoint URL carries query parameters.
// The injection probe uses this to pick its substitution point.
func (t *Target) HasQuery() bool { return t.parsed.RawQuery != "" }

// BearerToken returns the bearer token from the Authorization header,
// or "" if the target carries none.
func (t *Target) BearerToken() string {
	auth := t.headers.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return auth[7:]
	}
	return ""
}
