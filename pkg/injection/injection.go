// Package injection provides the injection probe: SQL injection, XSS and
// path traversal payloads substituted into the target's most plausible
// injection point, with response-signature classification.
package injection

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/jsonutil"
	"github.com/vaptprobe/vaptprobe/pkg/payloads"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/probeconfig"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

// Config configures the injection probe.
type Config struct {
	probeconfig.Base
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	var cfg Config
	cfg.Validate()
	return cfg
}

// Prober tests a target for injection vulnerabilities.
type Prober struct {
	cfg     Config
	exec    *probe.Executor
	catalog *payloads.Catalog
}

// NewProber creates an injection prober.
func NewProber(exec *probe.Executor, catalog *payloads.Catalog, cfg Config) *Prober {
	cfg.Validate()
	if catalog == nil {
		catalog = payloads.Default()
	}
	return &Prober{cfg: cfg, exec: exec, catalog: catalog}
}

// subCheck maps a payload family to its classifier and severity.
type subCheck struct {
	sub      payloads.SubCategory
	label    string
	severity finding.Severity
	classify func(p *Prober, payload string, body string) (matched string, ok bool)
}

func subChecks() []subCheck {
	return []subCheck{
		{
			sub:      payloads.SubSQLi,
			label:    "SQL Injection",
			severity: finding.Critical,
			classify: func(p *Prober, _ string, body string) (string, bool) {
				lower := strings.ToLower(body)
				for _, sig := range p.catalog.SQLErrorSignatures() {
					if strings.Contains(lower, strings.ToLower(sig)) {
						return sig, true
					}
				}
				return "", false
			},
		},
		{
			sub:      payloads.SubXSS,
			label:    "Cross-Site Scripting",
			severity: finding.High,
			classify: func(_ *Prober, payload string, body string) (string, bool) {
				// Verbatim, unescaped reflection only. An HTML-encoded
				// echo is the safe behavior and must not match.
				if strings.Contains(body, payload) {
					return payload, true
				}
				return "", false
			},
		},
		{
			sub:      payloads.SubTraversal,
			label:    "Path Traversal",
			severity: finding.Medium,
			classify: func(p *Prober, _ string, body string) (string, bool) {
				for _, sig := range p.catalog.SystemFileSignatures() {
					if strings.Contains(body, sig) {
						return sig, true
					}
				}
				return "", false
			},
		},
	}
}

// Probe runs all injection sub-checks sequentially and returns their
// findings. Transport errors are counted into evidence, never dropped.
func (p *Prober) Probe(ctx context.Context, tgt *target.Target) ([]finding.Finding, error) {
	var out []finding.Finding

	for _, check := range subChecks() {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		out = append(out, p.runSub(ctx, tgt, check))
	}
	return out, nil
}

// runSub executes one payload family and produces exactly one finding.
func (p *Prober) runSub(ctx context.Context, tgt *target.Target, check subCheck) finding.Finding {
	list := p.catalog.Injection(check.sub)

	sent := 0
	transportErrs := 0
	var lastErr string

	for _, pl := range list {
		if ctx.Err() != nil {
			break
		}

		ov := p.buildOverrides(tgt, pl.Value)
		ov.Timeout = p.cfg.Timeout
		res := p.exec.Do(ctx, tgt, ov)
		sent++
		p.cfg.Notify(progressEvent(res))

		if res.Failed() {
			transportErrs++
			lastErr = res.ErrString
			continue
		}

		if sig, ok := check.classify(p, pl.Value, res.BodySnippet); ok {
			f := finding.Finding{
				Category:    finding.CategoryInjection,
				Label:       check.label,
				Severity:    check.severity,
				Status:      finding.StatusVulnerable,
				Description: check.label + " suspected: payload produced a known detection signature in the response.",
				Remediation: remediation(check.sub),
				Evidence: finding.Evidence{
					StatusCode:      res.StatusCode,
					Signature:       sig,
					Payload:         pl.Value,
					RequestsSent:    sent,
					TransportErrors: transportErrs,
				},
			}
			p.cfg.Notify(findingEvent(&f))
			return f
		}
	}

	// Every request failed: no conclusion is possible for this family.
	if sent > 0 && transportErrs == sent {
		f := finding.Finding{
			Category:    finding.CategoryInjection,
			Label:       check.label,
			Severity:    finding.Info,
			Status:      finding.StatusInconclusive,
			Description: check.label + " test could not be completed: all requests failed at the transport layer.",
			Remediation: "Ensure the endpoint is reachable from the scanner and retry.",
			Evidence: finding.Evidence{
				RequestsSent:    sent,
				TransportErrors: transportErrs,
				Error:           lastErr,
			},
		}
		p.cfg.Notify(findingEvent(&f))
		return f
	}

	f := finding.Finding{
		Category:    finding.CategoryInjection,
		Label:       check.label,
		Severity:    finding.Info,
		Status:      finding.StatusSafe,
		Description: check.label + " not detected: no detection signature appeared across the payload set.",
		Remediation: "Keep input validation and parameterized data access in place.",
		Evidence: finding.Evidence{
			RequestsSent:    sent,
			TransportErrors: transportErrs,
		},
	}
	p.cfg.Notify(findingEvent(&f))
	return f
}

// buildOverrides picks the injection point for one payload: an existing
// query parameter when the target URL has any, else a JSON body field for
// body-carrying methods, else a synthetic `q` query parameter.
func (p *Prober) buildOverrides(tgt *target.Target, payload string) probe.Overrides {
	u := tgt.Parsed()

	if tgt.HasQuery() {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q.Set(keys[0], payload)
		u.RawQuery = q.Encode()
		return probe.Overrides{URL: u.String()}
	}

	switch tgt.Method() {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body, err := jsonutil.Marshal(map[string]string{"input": payload})
		if err != nil {
			break
		}
		return probe.Overrides{
			Body:    string(body),
			Headers: map[string]string{"Content-Type": defaults.ContentTypeJSON},
		}
	}

	q := url.Values{"q": {payload}}
	u.RawQuery = q.Encode()
	return probe.Overrides{URL: u.String()}
}

func remediation(sub payloads.SubCategory) string {
	switch sub {
	case payloads.SubSQLi:
		return "Use parameterized queries or prepared statements; never concatenate user input into SQL."
	case payloads.SubXSS:
		return "Encode output for its HTML context and set a restrictive Content-Security-Policy."
	case payloads.SubTraversal:
		return "Canonicalize and validate file paths server-side; never pass client input to filesystem APIs."
	}
	return "Validate and sanitize all client-supplied input."
}
