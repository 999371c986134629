// Package config holds the CLI configuration: flag parsing layered over
// VAPT_* environment defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/duration"
)

// Environment variables read as defaults. Flags override.
const (
	EnvTargetURL   = "VAPT_TARGET_URL"
	EnvMethod      = "VAPT_METHOD"
	EnvBearerToken = "VAPT_BEARER_TOKEN"
	EnvTimeout     = "VAPT_TIMEOUT"
	EnvBurstSize   = "VAPT_BURST_SIZE"
	EnvConcurrency = "VAPT_CONCURRENCY"
)

// headerFlag collects repeated -H "Name: value" flags.
type headerFlag map[string]string

func (h headerFlag) String() string {
	var parts []string
	for k, v := range h {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}

func (h headerFlag) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: header %q (want \"Name: value\")", ErrInvalidConfig, value)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(val)
	return nil
}

// Config holds all CLI configuration options.
type Config struct {
	// Target settings
	TargetURL   string
	Method      string
	Headers     map[string]string
	Body        string
	BearerToken string

	// Test selection (empty = all categories)
	Categories []string

	// Execution settings
	Timeout     time.Duration
	BurstSize   int
	Concurrency int

	// Payload settings
	PayloadFile string // Optional YAML catalog overlay

	// Output settings
	OutputDir   string
	JSONOnly    bool
	Silent      bool
	NoColor     bool
	Verbose     bool
	MetricsPort int // 0 disables the Prometheus endpoint

	// Network settings
	SkipVerify bool
}

// ParseFlags parses command line arguments on top of environment
// defaults and returns Config.
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{
		Headers: make(map[string]string),
	}

	fs := flag.NewFlagSet("vaptprobe", flag.ContinueOnError)

	// === TARGET ===
	fs.StringVar(&cfg.TargetURL, "u", envString(EnvTargetURL, ""), "Target endpoint URL")
	fs.StringVar(&cfg.TargetURL, "target", envString(EnvTargetURL, ""), "Target endpoint URL (alias)")
	fs.StringVar(&cfg.Method, "X", envString(EnvMethod, "GET"), "HTTP method")
	fs.StringVar(&cfg.Method, "method", envString(EnvMethod, "GET"), "HTTP method (alias)")
	fs.Var(headerFlag(cfg.Headers), "H", "Request header \"Name: value\" (repeatable)")
	fs.StringVar(&cfg.Body, "d", "", "Request body")
	fs.StringVar(&cfg.BearerToken, "token", envString(EnvBearerToken, ""), "Bearer token for the Authorization header")

	// === TESTS ===
	tests := fs.String("tests", "", "Comma-separated categories: injection,auth,rate_limit,cors,headers (empty = all)")

	// === EXECUTION ===
	timeout := fs.Int("timeout", envInt(EnvTimeout, int(duration.ProbeTimeout/time.Second)), "Per-request timeout in seconds")
	fs.IntVar(&cfg.BurstSize, "burst", envInt(EnvBurstSize, defaults.BurstSize), "Rate-limit burst size")
	fs.IntVar(&cfg.Concurrency, "concurrency", envInt(EnvConcurrency, defaults.ConcurrencySequential), "Concurrent category probes")
	fs.IntVar(&cfg.Concurrency, "c", envInt(EnvConcurrency, defaults.ConcurrencySequential), "Concurrent category probes (alias)")

	// === PAYLOADS ===
	fs.StringVar(&cfg.PayloadFile, "payloads", "", "YAML payload catalog overlay file")

	// === OUTPUT ===
	fs.StringVar(&cfg.OutputDir, "o", ".", "Directory for report files")
	fs.StringVar(&cfg.OutputDir, "output", ".", "Directory for report files (alias)")
	fs.BoolVar(&cfg.JSONOnly, "json", false, "Write only the JSON report")
	fs.BoolVar(&cfg.Silent, "silent", false, "Silent mode - no progress")
	fs.BoolVar(&cfg.Silent, "s", false, "Silent (alias)")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose (alias)")
	fs.IntVar(&cfg.MetricsPort, "metrics-port", 0, "Expose Prometheus metrics on this port (0 = off)")

	// === NETWORK ===
	fs.BoolVar(&cfg.SkipVerify, "skip-verify", false, "Skip TLS verification")
	fs.BoolVar(&cfg.SkipVerify, "k", false, "Skip TLS (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
	if *tests != "" {
		for _, t := range strings.Split(*tests, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Categories = append(cfg.Categories, t)
			}
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("%w: target URL (use -u or %s)", ErrMissingRequired, EnvTargetURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.BurstSize <= 0 {
		return fmt.Errorf("%w: burst size must be positive", ErrInvalidConfig)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}

// RequestHeaders merges the explicit headers with the bearer token. The
// -H Authorization value wins over -token.
func (c *Config) RequestHeaders() map[string]string {
	headers := make(map[string]string, len(c.Headers)+1)
	if c.BearerToken != "" {
		headers["Authorization"] = "Bearer " + c.BearerToken
	}
	for k, v := range c.Headers {
		headers[k] = v
	}
	return headers
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
