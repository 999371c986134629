// Package burst provides the rate-limiting probe: a fixed burst of
// requests dispatched through a bounded worker pool, with completion-order
// result collection and 429/Retry-After classification.
package burst

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/duration"
	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/httpclient"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/probeconfig"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
	"github.com/vaptprobe/vaptprobe/pkg/target"
	"github.com/vaptprobe/vaptprobe/pkg/workerpool"
)

// Config configures the burst probe.
type Config struct {
	probeconfig.Base

	// BurstSize is the number of requests to fire (default 50).
	BurstSize int

	// Concurrency caps in-flight requests, independent of BurstSize
	// (default 10). Too high a cap produces false "no rate limit"
	// signals from local socket exhaustion.
	Concurrency int

	// PacingRPS caps the client-side dispatch rate (default 100).
	PacingRPS int
}

// DefaultConfig returns burst defaults.
func DefaultConfig() Config {
	cfg := Config{
		BurstSize:   defaults.BurstSize,
		Concurrency: defaults.ConcurrencyBurst,
		PacingRPS:   defaults.BurstPacingRPS,
	}
	cfg.Base.Validate()
	cfg.Base.Timeout = duration.BurstRequestTimeout
	return cfg
}

// Prober tests rate-limiting enforcement on a target.
type Prober struct {
	cfg  Config
	exec *probe.Executor
}

// NewProber creates a burst prober. A nil executor gets one with
// keep-alives disabled and a connection cap matching the burst
// concurrency, so every burst request opens a fresh connection and
// exercises the target's limiter.
func NewProber(exec *probe.Executor, cfg Config) *Prober {
	cfg.Base.Validate()
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = defaults.BurstSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.ConcurrencyBurst
	}
	if cfg.PacingRPS <= 0 {
		cfg.PacingRPS = defaults.BurstPacingRPS
	}
	if exec == nil {
		clientCfg := httpclient.DefaultConfig()
		clientCfg.DisableKeepAlives = true
		clientCfg.MaxConnsPerHost = cfg.Concurrency
		clientCfg.Timeout = duration.BurstRequestTimeout
		exec = probe.NewExecutor(
			probe.WithClient(httpclient.New(clientCfg)),
			probe.WithLogger(cfg.Logger),
		)
	}
	return &Prober{cfg: cfg, exec: exec}
}

// observation is one burst response in completion order.
type observation struct {
	ordinal   int
	status    int
	retrySig  bool
	transport bool
	slow      bool
}

// Probe fires the burst and classifies the observed status sequence.
// Cancellation stops new dispatch; in-flight requests complete or time
// out naturally. Transport errors are recorded as evidence, never as a
// rate-limit signal.
func (p *Prober) Probe(ctx context.Context, tgt *target.Target) ([]finding.Finding, error) {
	results := make(chan *probe.Result, p.cfg.BurstSize)
	pool := workerpool.New(p.cfg.Concurrency)
	limiter := rate.NewLimiter(rate.Limit(p.cfg.PacingRPS), p.cfg.Concurrency)

	go func() {
		defer func() {
			pool.Close()
			close(results)
		}()
		for i := 0; i < p.cfg.BurstSize; i++ {
			if err := limiter.Wait(ctx); err != nil {
				return // cancelled: no new dispatch
			}
			ok := pool.Submit(func() {
				results <- p.exec.Do(ctx, tgt, probe.Overrides{
					Timeout: p.cfg.Timeout,
				})
			})
			if !ok {
				return
			}
		}
	}()

	// Collect in completion order. The channel is the only shared sink;
	// ordinals are assigned on receive, so no locking is needed.
	var obs []observation
	ordinal := 0
	for res := range results {
		ordinal++
		o := observation{
			ordinal:   ordinal,
			status:    res.StatusCode,
			transport: res.Failed(),
			slow:      res.Latency > duration.SlowResponse,
		}
		if !res.Failed() {
			o.retrySig = res.StatusCode == 429 || res.Header.Get("Retry-After") != ""
		}
		obs = append(obs, o)

		p.cfg.Notify(progress.Event{
			Category:  finding.CategoryRateLimit,
			Stage:     progress.StageRequest,
			Requests:  ordinal,
			Latency:   res.Latency,
			Transport: res.Failed(),
		})
	}

	f := p.classify(obs)
	p.cfg.Notify(progress.Event{
		Category: finding.CategoryRateLimit,
		Stage:    progress.StageFinding,
		Finding:  &f,
	})
	return []finding.Finding{f}, ctx.Err()
}

func (p *Prober) classify(obs []observation) finding.Finding {
	completed := 0
	transportErrs := 0
	outliers := 0
	firstSignal := 0
	signals := 0

	for _, o := range obs {
		if o.transport {
			transportErrs++
		} else {
			completed++
		}
		if o.slow {
			outliers++
		}
		if o.retrySig {
			signals++
			if firstSignal == 0 {
				firstSignal = o.ordinal
			}
		}
	}

	detail := fmt.Sprintf("%d dispatched, %d completed, %d latency outliers", len(obs), completed, outliers)

	if completed == 0 {
		return finding.Finding{
			Category:    finding.CategoryRateLimit,
			Label:       "Rate Limiting",
			Severity:    finding.Info,
			Status:      finding.StatusInconclusive,
			Description: "Rate-limit burst could not be evaluated: no request received a server response.",
			Remediation: "Ensure the endpoint is reachable from the scanner and retry.",
			Evidence: finding.Evidence{
				RequestsSent:    len(obs),
				TransportErrors: transportErrs,
				Detail:          detail,
			},
		}
	}

	if firstSignal > 0 {
		return finding.Finding{
			Category:    finding.CategoryRateLimit,
			Label:       "Rate Limiting",
			Severity:    finding.Info,
			Status:      finding.StatusSafe,
			Description: fmt.Sprintf("Rate limiting detected: first 429/Retry-After signal at completion position %d of %d.", firstSignal, len(obs)),
			Remediation: "Rate limiting is configured; keep thresholds aligned with expected client behavior.",
			Evidence: finding.Evidence{
				StatusCode:         429,
				FirstSignalOrdinal: firstSignal,
				RequestsSent:       len(obs),
				TransportErrors:    transportErrs,
				Detail:             fmt.Sprintf("%s, %d rate-limit signals", detail, signals),
			},
		}
	}

	return finding.Finding{
		Category:    finding.CategoryRateLimit,
		Label:       "Rate Limiting",
		Severity:    finding.Medium,
		Status:      finding.StatusVulnerable,
		Description: fmt.Sprintf("No rate limiting observed under burst of %d requests.", len(obs)),
		Remediation: "Enforce request rate limits (e.g. token bucket per client) and return 429 with Retry-After.",
		Evidence: finding.Evidence{
			RequestsSent:    len(obs),
			TransportErrors: transportErrs,
			Detail:          detail,
		},
	}
}
