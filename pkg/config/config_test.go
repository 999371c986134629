package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"-u", "https://api.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TargetURL != "https://api.example.com" {
			t.Errorf("unexpected target: %s", cfg.TargetURL)
		}
		if cfg.Method != "GET" {
			t.Errorf("expected GET default, got %s", cfg.Method)
		}
		if cfg.BurstSize != 50 {
			t.Errorf("expected default burst 50, got %d", cfg.BurstSize)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected default 10s timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := ParseFlags(nil)
		if !errors.Is(err, ErrMissingRequired) {
			t.Errorf("expected ErrMissingRequired, got %v", err)
		}
	})

	t.Run("repeated headers", func(t *testing.T) {
		cfg, err := ParseFlags([]string{
			"-u", "https://api.example.com",
			"-H", "X-One: 1",
			"-H", "X-Two: 2",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Headers["X-One"] != "1" || cfg.Headers["X-Two"] != "2" {
			t.Errorf("unexpected headers: %v", cfg.Headers)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		_, err := ParseFlags([]string{"-u", "https://api.example.com", "-H", "no-colon-here"})
		if err == nil {
			t.Fatal("expected an error for a malformed header")
		}
	})

	t.Run("tests list", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"-u", "https://api.example.com", "-tests", "injection, cors"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Categories) != 2 || cfg.Categories[0] != "injection" || cfg.Categories[1] != "cors" {
			t.Errorf("unexpected categories: %v", cfg.Categories)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		_, err := ParseFlags([]string{"-u", "https://api.example.com", "-burst", "0"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv(EnvTargetURL, "https://env.example.com")
	t.Setenv(EnvMethod, "POST")
	t.Setenv(EnvBurstSize, "25")
	t.Setenv(EnvTimeout, "3")

	t.Run("env fills defaults", func(t *testing.T) {
		cfg, err := ParseFlags(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TargetURL != "https://env.example.com" {
			t.Errorf("expected env target, got %s", cfg.TargetURL)
		}
		if cfg.Method != "POST" {
			t.Errorf("expected env method, got %s", cfg.Method)
		}
		if cfg.BurstSize != 25 {
			t.Errorf("expected env burst 25, got %d", cfg.BurstSize)
		}
		if cfg.Timeout != 3*time.Second {
			t.Errorf("expected env timeout 3s, got %v", cfg.Timeout)
		}
	})

	t.Run("flags override env", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"-u", "https://flag.example.com", "-burst", "10"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TargetURL != "https://flag.example.com" {
			t.Errorf("expected flag target, got %s", cfg.TargetURL)
		}
		if cfg.BurstSize != 10 {
			t.Errorf("expected flag burst 10, got %d", cfg.BurstSize)
		}
	})

	t.Run("unparsable env ignored", func(t *testing.T) {
		t.Setenv(EnvBurstSize, "lots")
		cfg, err := ParseFlags(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BurstSize != 50 {
			t.Errorf("expected fallback burst 50, got %d", cfg.BurstSize)
		}
	})
}

func TestRequestHeaders(t *testing.T) {
	t.Run("token becomes authorization", func(t *testing.T) {
		cfg := &Config{Headers: map[string]string{}, BearerToken: "tok"}
		h := cfg.RequestHeaders()
		if h["Authorization"] != "Bearer tok" {
			t.Errorf("unexpected authorization: %q", h["Authorization"])
		}
	})

	t.Run("explicit header wins", func(t *testing.T) {
		cfg := &Config{
			Headers:     map[string]string{"Authorization": "Basic abc"},
			BearerToken: "tok",
		}
		h := cfg.RequestHeaders()
		if h["Authorization"] != "Basic abc" {
			t.Errorf("explicit -H must win, got %q", h["Authorization"])
		}
	})
}
