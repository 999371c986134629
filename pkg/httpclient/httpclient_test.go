package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default must return the same shared client")
	}
	if a.Timeout == 0 {
		t.Error("expected a non-zero timeout")
	}
}

func TestNew(t *testing.T) {
	t.Run("zero values filled", func(t *testing.T) {
		c := New(Config{})
		if c.Timeout == 0 {
			t.Error("expected a default timeout")
		}
		tr, ok := c.Transport.(*http.Transport)
		if !ok {
			t.Fatal("expected *http.Transport")
		}
		if tr.MaxConnsPerHost == 0 {
			t.Error("expected a per-host connection cap")
		}
	})

	t.Run("keep-alives configurable", func(t *testing.T) {
		c := New(Config{DisableKeepAlives: true})
		tr := c.Transport.(*http.Transport)
		if !tr.DisableKeepAlives {
			t.Error("expected keep-alives disabled")
		}
	})

	t.Run("redirects not followed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/next", http.StatusMovedPermanently)
		}))
		defer srv.Close()

		resp, err := New(Config{}).Get(srv.URL)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusMovedPermanently {
			t.Errorf("expected 301, got %d", resp.StatusCode)
		}
	})
}

func TestWithTimeout(t *testing.T) {
	cfg := WithTimeout(3 * time.Second)
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Timeout)
	}
	if cfg.MaxIdleConns != DefaultConfig().MaxIdleConns {
		t.Error("other fields must keep defaults")
	}
}
