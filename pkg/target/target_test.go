package target

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("valid target", func(t *testing.T) {
		tgt, err := New("https://api.example.com/users?id=1", "get", map[string]string{"X-Test": "1"}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tgt.Method() != "GET" {
			t.Errorf("expected method normalized to GET, got %s", tgt.Method())
		}
		if !tgt.HasQuery() {
			t.Error("expected HasQuery to be true")
		}
	})

	t.Run("default method", func(t *testing.T) {
		tgt, err := New("http://localhost:8080/api", "", nil, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tgt.Method() != "GET" {
			t.Errorf("expected GET default, got %s", tgt.Method())
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := New("ftp://example.com/file", "GET", nil, "")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
		if !errors.Is(err, ErrMalformed) {
			t.Error("scheme error should wrap ErrMalformed")
		}
	})

	t.Run("missing host", func(t *testing.T) {
		_, err := New("https:///path-only", "GET", nil, "")
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("invalid method", func(t *testing.T) {
		_, err := New("https://example.com", "BREW", nil, "")
		if !errors.Is(err, ErrInvalidMethod) {
			t.Errorf("expected ErrInvalidMethod, got %v", err)
		}
	})
}

func TestHeadersReturnsCopy(t *testing.T) {
	tgt, err := New("https://example.com", "GET", map[string]string{"Authorization": "Bearer abc"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := tgt.Headers()
	h.Set("Authorization", "Bearer mutated")

	if tgt.Headers().Get("Authorization") != "Bearer abc" {
		t.Error("mutating the returned headers must not affect the target")
	}
}

func TestParsedReturnsCopy(t *testing.T) {
	tgt, err := New("https://example.com/api?x=1", "GET", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u := tgt.Parsed()
	u.RawQuery = "x=2"

	if tgt.Parsed().RawQuery != "x=1" {
		t.Error("mutating the returned URL must not affect the target")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name  string
		auth  string
		token string
	}{
		{"bearer token", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"no header", "", ""},
		{"bare scheme", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.auth != "" {
				headers["Authorization"] = tt.auth
			}
			tgt, err := New("https://example.com", "GET", headers, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := tgt.BearerToken(); got != tt.token {
				t.Errorf("expected token %q, got %q", tt.token, got)
			}
		})
	}
}
