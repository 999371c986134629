package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

func runProbe(t *testing.T, url string, headers map[string]string) []finding.Finding {
	t.Helper()
	tgt, err := target.New(url, "GET", headers, "")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	p := NewProber(probe.NewExecutor(), Config{})
	fs, err := p.Probe(context.Background(), tgt)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	return fs
}

func TestProbe(t *testing.T) {
	const validToken = "Bearer good-token"

	authServer := func() *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != validToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("enforced auth is safe", func(t *testing.T) {
		srv := authServer()
		defer srv.Close()

		fs := runProbe(t, srv.URL, map[string]string{"Authorization": validToken})
		if len(fs) != 1 {
			t.Fatalf("expected exactly one finding, got %d", len(fs))
		}
		f := fs[0]
		if f.Status != finding.StatusSafe {
			t.Errorf("expected safe, got %s", f.Status)
		}
		if f.Evidence.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 evidence from the stripped request, got %d", f.Evidence.StatusCode)
		}
	})

	t.Run("missing auth bypass", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK) // accepts everything
		}))
		defer srv.Close()

		fs := runProbe(t, srv.URL, map[string]string{"Authorization": validToken})
		var bypasses []finding.Finding
		for _, f := range fs {
			if f.Label == "Authentication Bypass" {
				bypasses = append(bypasses, f)
			}
		}
		// Stripped and invalid-token sub-checks both succeed here.
		if len(bypasses) != 2 {
			t.Fatalf("expected 2 bypass findings, got %d", len(bypasses))
		}
		for _, f := range bypasses {
			if f.Status != finding.StatusVulnerable || f.Severity != finding.High {
				t.Errorf("expected vulnerable/high, got %s/%s", f.Status, f.Severity)
			}
		}
	})

	t.Run("invalid token accepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Any bearer-shaped value passes; absence is rejected.
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		fs := runProbe(t, srv.URL, map[string]string{"Authorization": validToken})
		var bypass *finding.Finding
		for i := range fs {
			if fs[i].Label == "Authentication Bypass" {
				bypass = &fs[i]
			}
		}
		if bypass == nil {
			t.Fatal("expected a bypass finding for the forged token")
		}
		if bypass.Evidence.Detail != "invalid bearer token accepted" {
			t.Errorf("unexpected evidence detail: %s", bypass.Evidence.Detail)
		}
	})

	t.Run("no invalid-token check without bearer target", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		// X-Api-Key only: the forged-bearer sub-check must not run.
		fs := runProbe(t, srv.URL, map[string]string{"X-Api-Key": "k"})
		for _, f := range fs {
			if f.Evidence.Detail == "invalid bearer token accepted" {
				t.Error("forged-bearer check ran without a bearer target")
			}
		}
	})

	t.Run("failing baseline adds inconclusive", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		fs := runProbe(t, srv.URL, map[string]string{"Authorization": validToken})
		var baseline *finding.Finding
		for i := range fs {
			if fs[i].Label == "Authentication Baseline" {
				baseline = &fs[i]
			}
		}
		if baseline == nil {
			t.Fatal("expected a baseline finding")
		}
		if baseline.Status != finding.StatusInconclusive {
			t.Errorf("expected inconclusive, got %s", baseline.Status)
		}
	})

	t.Run("unreachable target inconclusive", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		fs := runProbe(t, srv.URL, map[string]string{"Authorization": validToken})
		if len(fs) != 1 {
			t.Fatalf("expected one finding, got %d", len(fs))
		}
		if fs[0].Status != finding.StatusInconclusive {
			t.Errorf("expected inconclusive, got %s", fs[0].Status)
		}
	})
}
