// Package suite orchestrates the category probes against one target and
// assembles their findings into a report.
package suite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vaptprobe/vaptprobe/pkg/auth"
	"github.com/vaptprobe/vaptprobe/pkg/burst"
	"github.com/vaptprobe/vaptprobe/pkg/cors"
	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/duration"
	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/headers"
	"github.com/vaptprobe/vaptprobe/pkg/httpclient"
	"github.com/vaptprobe/vaptprobe/pkg/injection"
	"github.com/vaptprobe/vaptprobe/pkg/payloads"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/probeconfig"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
	"github.com/vaptprobe/vaptprobe/pkg/report"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

// ErrUnknownCategory is returned when a requested category name is not
// recognized.
var ErrUnknownCategory = errors.New("suite: unknown category")

// Prober is the contract every category probe satisfies.
type Prober interface {
	Probe(ctx context.Context, tgt *target.Target) ([]finding.Finding, error)
}

// Config configures a suite run.
type Config struct {
	probeconfig.Base

	// Concurrency caps how many category probes run at once. 1 runs them
	// sequentially in canonical order (default).
	Concurrency int

	// BurstSize overrides the rate-limit probe's burst size.
	BurstSize int

	// BurstConcurrency overrides the rate-limit probe's in-flight cap.
	BurstConcurrency int

	// Catalog supplies the payload catalog. Nil uses the built-in set.
	Catalog *payloads.Catalog

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// DefaultConfig returns suite defaults: sequential category execution
// with the built-in payload catalog.
func DefaultConfig() Config {
	cfg := Config{
		Concurrency:      defaults.ConcurrencySequential,
		BurstSize:        defaults.BurstSize,
		BurstConcurrency: defaults.ConcurrencyBurst,
	}
	cfg.Base.Validate()
	return cfg
}

// Suite holds the probe registry for one target assessment.
type Suite struct {
	cfg     Config
	exec    *probe.Executor
	probers map[finding.Category]Prober
}

// New creates a suite with one prober per category, all sharing a
// pooled executor except the rate-limit probe, which gets its own
// keep-alive-disabled client.
func New(cfg Config) *Suite {
	cfg.Base.Validate()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.ConcurrencySequential
	}
	if cfg.Concurrency > defaults.ConcurrencyProbes {
		cfg.Concurrency = defaults.ConcurrencyProbes
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = defaults.BurstSize
	}
	if cfg.BurstConcurrency <= 0 {
		cfg.BurstConcurrency = defaults.ConcurrencyBurst
	}
	if cfg.Catalog == nil {
		cfg.Catalog = payloads.Default()
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Timeout
	clientCfg.InsecureSkipVerify = cfg.InsecureSkipVerify
	exec := probe.NewExecutor(
		probe.WithClient(httpclient.New(clientCfg)),
		probe.WithLogger(cfg.Logger),
	)

	base := cfg.Base

	burstCfg := burst.Config{
		Base:        base,
		BurstSize:   cfg.BurstSize,
		Concurrency: cfg.BurstConcurrency,
	}
	burstCfg.Timeout = duration.BurstRequestTimeout

	// Burst traffic gets its own keep-alive-disabled client so pooled
	// connections cannot mask the target's per-connection limiting.
	burstClientCfg := httpclient.DefaultConfig()
	burstClientCfg.DisableKeepAlives = true
	burstClientCfg.MaxConnsPerHost = cfg.BurstConcurrency
	burstClientCfg.Timeout = duration.BurstRequestTimeout
	burstClientCfg.InsecureSkipVerify = cfg.InsecureSkipVerify
	burstExec := probe.NewExecutor(
		probe.WithClient(httpclient.New(burstClientCfg)),
		probe.WithLogger(cfg.Logger),
	)

	return &Suite{
		cfg:  cfg,
		exec: exec,
		probers: map[finding.Category]Prober{
			finding.CategoryInjection: injection.NewProber(exec, cfg.Catalog, injection.Config{Base: base}),
			finding.CategoryAuth:      auth.NewProber(exec, auth.Config{Base: base}),
			finding.CategoryRateLimit: burst.NewProber(burstExec, burstCfg),
			finding.CategoryCORS:      cors.NewProber(exec, cfg.Catalog, cors.Config{Base: base}),
			finding.CategoryHeaders:   headers.NewProber(exec, headers.Config{Base: base}),
		},
	}
}

// normalize validates the requested category names and returns them in
// canonical execution order, deduplicated. Empty input selects all
// categories.
func normalize(categories []string) ([]finding.Category, error) {
	if len(categories) == 0 {
		return finding.Categories(), nil
	}

	requested := make(map[finding.Category]bool, len(categories))
	for _, name := range categories {
		cat := finding.Category(name)
		if !cat.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		requested[cat] = true
	}

	var out []finding.Category
	for _, cat := range finding.Categories() {
		if requested[cat] {
			out = append(out, cat)
		}
	}
	return out, nil
}

// Run executes the selected category probes against the target and
// builds the stamped report. Every attempted category contributes at
// least one finding; a panicking probe is isolated and recorded as an
// inconclusive finding instead of taking the run down. The returned
// report's findings follow the canonical category order regardless of
// probe completion order.
func (s *Suite) Run(ctx context.Context, tgt *target.Target, categories []string) (*report.Report, error) {
	cats, err := normalize(categories)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.cfg.Notify(progress.Event{Stage: progress.StageStarted})

	perCategory := make([][]finding.Finding, len(cats))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, cat := range cats {
		wg.Add(1)
		go func(slot int, cat finding.Category) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			perCategory[slot] = s.runOne(ctx, cat, tgt)
		}(i, cat)
	}
	wg.Wait()

	var findings []finding.Finding
	for _, fs := range perCategory {
		findings = append(findings, fs...)
	}

	rep := report.Build(tgt, cats, findings).
		Stamp(uuid.NewString(), time.Now().UTC(), time.Since(start))

	s.cfg.Notify(progress.Event{Stage: progress.StageCompleted})
	return rep, ctx.Err()
}

// runOne executes a single category probe with panic isolation.
func (s *Suite) runOne(ctx context.Context, cat finding.Category, tgt *target.Target) (out []finding.Finding) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Logger.Error("probe panicked",
				slog.String("category", string(cat)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			out = []finding.Finding{panicFinding(cat, r)}
		}
	}()

	prober := s.probers[cat]
	fs, err := prober.Probe(ctx, tgt)
	if err != nil {
		s.cfg.Logger.Warn("probe error",
			slog.String("category", string(cat)),
			slog.String("error", err.Error()))
	}
	if len(fs) == 0 {
		fs = []finding.Finding{emptyFinding(cat, err)}
	}
	return fs
}

func panicFinding(cat finding.Category, r any) finding.Finding {
	return finding.Finding{
		Category:    cat,
		Label:       "Probe Failure",
		Severity:    finding.Info,
		Status:      finding.StatusInconclusive,
		Description: fmt.Sprintf("The %s probe failed unexpectedly and its results were discarded.", cat),
		Remediation: "Retry the assessment; report the failure if it persists.",
		Evidence:    finding.Evidence{Error: fmt.Sprint(r)},
	}
}

func emptyFinding(cat finding.Category, err error) finding.Finding {
	f := finding.Finding{
		Category:    cat,
		Label:       "Probe Incomplete",
		Severity:    finding.Info,
		Status:      finding.StatusInconclusive,
		Description: fmt.Sprintf("The %s probe produced no findings.", cat),
		Remediation: "Retry the assessment; report the failure if it persists.",
	}
	if err != nil {
		f.Evidence.Error = err.Error()
	}
	return f
}
