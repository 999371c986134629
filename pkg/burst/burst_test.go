package burst

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

func runBurst(t *testing.T, url string, size int) finding.Finding {
	t.Helper()
	tgt, err := target.New(url, "GET", nil, "")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	cfg := DefaultConfig()
	cfg.BurstSize = size
	cfg.PacingRPS = 1000

	p := NewProber(probe.NewExecutor(), cfg)
	fs, err := p.Probe(context.Background(), tgt)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if len(fs) != 1 {
		t.Fatalf("expected exactly one finding, got %d", len(fs))
	}
	return fs[0]
}

func TestProbe(t *testing.T) {
	t.Run("429 after threshold is safe", func(t *testing.T) {
		var count int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt64(&count, 1) > 10 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		f := runBurst(t, srv.URL, 30)
		if f.Status != finding.StatusSafe {
			t.Fatalf("expected safe, got %s", f.Status)
		}
		if f.Evidence.FirstSignalOrdinal == 0 {
			t.Error("expected the first signal ordinal in evidence")
		}
		if f.Evidence.RequestsSent != 30 {
			t.Errorf("expected 30 requests recorded, got %d", f.Evidence.RequestsSent)
		}
	})

	t.Run("retry-after alone counts as a signal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		f := runBurst(t, srv.URL, 5)
		if f.Status != finding.StatusSafe {
			t.Errorf("expected safe, got %s", f.Status)
		}
	})

	t.Run("no limiting is vulnerable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		f := runBurst(t, srv.URL, 20)
		if f.Status != finding.StatusVulnerable {
			t.Fatalf("expected vulnerable, got %s", f.Status)
		}
		if f.Severity != finding.Medium {
			t.Errorf("expected medium severity, got %s", f.Severity)
		}
	})

	t.Run("server errors are not rate-limit signals", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := runBurst(t, srv.URL, 10)
		if f.Status != finding.StatusVulnerable {
			t.Errorf("500s without 429/Retry-After must classify vulnerable, got %s", f.Status)
		}
	})

	t.Run("unreachable target inconclusive", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		f := runBurst(t, srv.URL, 10)
		if f.Status != finding.StatusInconclusive {
			t.Fatalf("expected inconclusive, got %s", f.Status)
		}
		if f.Evidence.TransportErrors != 10 {
			t.Errorf("expected 10 transport errors, got %d", f.Evidence.TransportErrors)
		}
	})

	t.Run("cancellation stops dispatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		tgt, err := target.New(srv.URL, "GET", nil, "")
		if err != nil {
			t.Fatalf("target: %v", err)
		}
		cfg := DefaultConfig()
		cfg.BurstSize = 1000
		cfg.PacingRPS = 10 // slow enough that cancellation lands mid-burst

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := NewProber(probe.NewExecutor(), cfg)
		fs, _ := p.Probe(ctx, tgt)
		if len(fs) != 1 {
			t.Fatalf("expected a finding even when cancelled, got %d", len(fs))
		}
		if fs[0].Evidence.RequestsSent >= 1000 {
			t.Error("cancellation must stop new dispatch")
		}
	})
}
