// Package headers provides the security headers probe: one baseline
// request, then presence and weak-value checks for the standard response
// hardening headers.
package headers

import (
	"context"
	"strings"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/probeconfig"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

// Check describes one required security header: its severity when missing
// and an optional validator for weak values. A nil validator accepts any
// non-empty value.
type Check struct {
	Name     string
	Severity finding.Severity
	Validate func(string) bool
}

// RequiredChecks returns the headers the probe inspects, in report order.
func RequiredChecks() []Check {
	return []Check{
		{
			Name:     "Strict-Transport-Security",
			Severity: finding.Medium,
			Validate: func(v string) bool {
				return strings.Contains(strings.ToLower(v), "max-age=")
			},
		},
		{
			Name:     "X-Content-Type-Options",
			Severity: finding.Low,
			Validate: func(v string) bool {
				return strings.EqualFold(strings.TrimSpace(v), "nosniff")
			},
		},
		{
			Name:     "X-Frame-Options",
			Severity: finding.Medium,
			Validate: func(v string) bool {
				v = strings.ToUpper(strings.TrimSpace(v))
				return v == "DENY" || v == "SAMEORIGIN"
			},
		},
		{
			Name:     "Content-Security-Policy",
			Severity: finding.Medium,
			Validate: func(v string) bool {
				// unsafe-inline without nonce/hash restriction defeats
				// the policy's XSS protection.
				lower := strings.ToLower(v)
				if strings.Contains(lower, "'unsafe-inline'") &&
					!strings.Contains(lower, "'nonce-") && !strings.Contains(lower, "'sha256-") {
					return false
				}
				return true
			},
		},
		{
			Name:     "X-XSS-Protection",
			Severity: finding.Low,
			Validate: func(v string) bool {
				return strings.HasPrefix(strings.TrimSpace(v), "1")
			},
		},
	}
}

// Config configures the headers probe.
type Config struct {
	probeconfig.Base
}

// Prober inspects response hardening headers on a target.
type Prober struct {
	cfg  Config
	exec *probe.Executor
}

// NewProber creates a headers prober.
func NewProber(exec *probe.Executor, cfg Config) *Prober {
	cfg.Validate()
	return &Prober{cfg: cfg, exec: exec}
}

// Probe issues one baseline request and produces one finding per missing
// or weakly configured header, or a single info finding when the header
// set is fully compliant. Classification is pure given the response, so
// re-running against a fixed fixture yields identical findings.
func (p *Prober) Probe(ctx context.Context, tgt *target.Target) ([]finding.Finding, error) {
	res := p.exec.Do(ctx, tgt, probe.Overrides{Timeout: p.cfg.Timeout})
	p.cfg.Notify(progress.Event{
		Category:  finding.CategoryHeaders,
		Stage:     progress.StageRequest,
		Latency:   res.Latency,
		Transport: res.Failed(),
	})

	if res.Failed() {
		f := finding.Finding{
			Category:    finding.CategoryHeaders,
			Label:       "Security Headers",
			Severity:    finding.Info,
			Status:      finding.StatusInconclusive,
			Description: "Security headers could not be inspected: the baseline request failed at the transport layer.",
			Remediation: "Ensure the endpoint is reachable from the scanner and retry.",
			Evidence:    finding.Evidence{Error: res.ErrString, RequestsSent: 1, TransportErrors: 1},
		}
		p.notifyFinding(&f)
		return []finding.Finding{f}, nil
	}

	out := Classify(res)
	for i := range out {
		p.notifyFinding(&out[i])
	}
	return out, nil
}

// Classify maps one response envelope to header findings. Exported so the
// classification can be tested against canned fixtures without a network.
func Classify(res *probe.Result) []finding.Finding {
	var out []finding.Finding

	for _, check := range RequiredChecks() {
		value := res.Header.Get(check.Name)

		switch {
		case value == "":
			out = append(out, finding.Finding{
				Category:    finding.CategoryHeaders,
				Label:       check.Name,
				Severity:    check.Severity,
				Status:      finding.StatusVulnerable,
				Description: "Missing security header: " + check.Name + ".",
				Remediation: remediation(check.Name),
				Evidence: finding.Evidence{
					StatusCode: res.StatusCode,
					Detail:     "header absent",
				},
			})
		case check.Validate != nil && !check.Validate(value):
			out = append(out, finding.Finding{
				Category:    finding.CategoryHeaders,
				Label:       check.Name,
				Severity:    check.Severity,
				Status:      finding.StatusVulnerable,
				Description: "Weakly configured security header: " + check.Name + ".",
				Remediation: remediation(check.Name),
				Evidence: finding.Evidence{
					StatusCode: res.StatusCode,
					Header:     check.Name + ": " + value,
					Detail:     "weak value",
				},
			})
		}
	}

	if len(out) == 0 {
		out = append(out, finding.Finding{
			Category:    finding.CategoryHeaders,
			Label:       "Security Headers",
			Severity:    finding.Info,
			Status:      finding.StatusSafe,
			Description: "All recommended security headers are present and well-configured.",
			Remediation: "Keep the header configuration under change control.",
			Evidence:    finding.Evidence{StatusCode: res.StatusCode},
		})
	}
	return out
}

func (p *Prober) notifyFinding(f *finding.Finding) {
	p.cfg.Notify(progress.Event{
		Category: finding.CategoryHeaders,
		Stage:    progress.StageFinding,
		Finding:  f,
	})
}

func remediation(header string) string {
	switch header {
	case "Strict-Transport-Security":
		return "Set Strict-Transport-Security with a max-age of at least one year on all HTTPS responses."
	case "X-Content-Type-Options":
		return "Set X-Content-Type-Options: nosniff to prevent MIME type sniffing."
	case "X-Frame-Options":
		return "Set X-Frame-Options: DENY (or SAMEORIGIN) to prevent clickjacking."
	case "Content-Security-Policy":
		return "Define a Content-Security-Policy without unrestricted 'unsafe-inline' script sources."
	case "X-XSS-Protection":
		return "Set X-XSS-Protection: 1; mode=block for legacy browser coverage."
	}
	return "Configure the recommended security response headers."
}
