// Package cors provides the CORS misconfiguration probe. It varies the
// Origin request header across an arbitrary third-party origin, a null
// origin and a no-Origin baseline, then classifies the
// Access-Control-Allow-Origin behavior it observes.
package cors

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/payloads"
	"github.com/vaptprobe/vaptprobe/pkg/probe"
	"github.com/vaptprobe/vaptprobe/pkg/probeconfig"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

// Config configures the CORS probe.
type Config struct {
	probeconfig.Base
}

// Prober tests CORS policy on a target.
type Prober struct {
	cfg     Config
	exec    *probe.Executor
	catalog *payloads.Catalog
}

// NewProber creates a CORS prober.
func NewProber(exec *probe.Executor, catalog *payloads.Catalog, cfg Config) *Prober {
	cfg.Validate()
	if catalog == nil {
		catalog = payloads.Default()
	}
	return &Prober{cfg: cfg, exec: exec, catalog: catalog}
}

// TestOrigins returns the attacker origins probed against targetHost:
// the catalog's fixed third-party origins plus one derived from the
// target's registrable domain, which catches suffix-matching validators
// (example.com validated by "endswith" accepts example.com.evil.invalid).
func (p *Prober) TestOrigins(targetHost string) []string {
	origins := append([]string(nil), p.catalog.AttackerOrigins()...)

	host := targetHost
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		origins = append(origins, fmt.Sprintf("https://%s.evil.invalid", domain))
	}
	return origins
}

// Probe executes the origin variations sequentially and returns exactly
// one finding describing the strongest misconfiguration observed.
func (p *Prober) Probe(ctx context.Context, tgt *target.Target) ([]finding.Finding, error) {
	sent := 0
	transportErrs := 0
	var lastErr string
	var responses []originResponse

	request := func(origin string) *probe.Result {
		headers := map[string]string{}
		if origin != "" {
			headers["Origin"] = origin
		}
		res := p.exec.Do(ctx, tgt, probe.Overrides{Headers: headers, Timeout: p.cfg.Timeout})
		sent++
		p.cfg.Notify(progress.Event{
			Category:  finding.CategoryCORS,
			Stage:     progress.StageRequest,
			Latency:   res.Latency,
			Transport: res.Failed(),
		})
		return res
	}

	// Baseline without an Origin header: some servers only emit CORS
	// headers for cross-origin requests, which is itself evidence of
	// origin-gated behavior.
	baseline := request("")
	baselineWildcard := false
	if baseline.Failed() {
		transportErrs++
		lastErr = baseline.ErrString
	} else {
		baselineWildcard = baseline.Header.Get("Access-Control-Allow-Origin") == "*"
	}

	origins := append(p.TestOrigins(tgt.Parsed().Host), "null")
	for _, origin := range origins {
		if ctx.Err() != nil {
			break
		}
		res := request(origin)
		if res.Failed() {
			transportErrs++
			lastErr = res.ErrString
			continue
		}
		responses = append(responses, originResponse{
			origin:      origin,
			allowOrigin: res.Header.Get("Access-Control-Allow-Origin"),
			allowCreds:  strings.EqualFold(res.Header.Get("Access-Control-Allow-Credentials"), "true"),
		})
	}

	var f finding.Finding
	switch {
	case len(responses) == 0 && transportErrs == sent:
		f = finding.Finding{
			Category:    finding.CategoryCORS,
			Label:       "CORS Policy",
			Severity:    finding.Info,
			Status:      finding.StatusInconclusive,
			Description: "CORS policy could not be evaluated: all requests failed at the transport layer.",
			Remediation: "Ensure the endpoint is reachable from the scanner and retry.",
			Evidence: finding.Evidence{
				RequestsSent:    sent,
				TransportErrors: transportErrs,
				Error:           lastErr,
			},
		}
	default:
		f = p.classify(responses, baselineWildcard, sent, transportErrs)
	}

	p.cfg.Notify(progress.Event{
		Category: finding.CategoryCORS,
		Stage:    progress.StageFinding,
		Finding:  &f,
	})
	return []finding.Finding{f}, ctx.Err()
}

// originResponse is one Origin variation and the grant it received.
type originResponse struct {
	origin      string
	allowOrigin string
	allowCreds  bool
}

func (p *Prober) classify(responses []originResponse, baselineWildcard bool, sent, transportErrs int) finding.Finding {
	evidence := func(r originResponse) finding.Evidence {
		header := "Access-Control-Allow-Origin: " + r.allowOrigin
		if r.allowCreds {
			header += "; Access-Control-Allow-Credentials: true"
		}
		return finding.Evidence{
			Header:          header,
			Payload:         r.origin,
			RequestsSent:    sent,
			TransportErrors: transportErrs,
		}
	}

	// Strongest condition first: credentialed wildcard.
	for _, r := range responses {
		if r.allowOrigin == "*" && r.allowCreds {
			return finding.Finding{
				Category:    finding.CategoryCORS,
				Label:       "CORS Policy",
				Severity:    finding.Critical,
				Status:      finding.StatusVulnerable,
				Description: "Wildcard Access-Control-Allow-Origin combined with Access-Control-Allow-Credentials: true.",
				Remediation: "Never combine wildcard origins with credentials; validate specific trusted origins.",
				Evidence:    evidence(r),
			}
		}
	}

	// Arbitrary origin reflected verbatim, including trusted null.
	for _, r := range responses {
		if r.allowOrigin != "" && r.allowOrigin == r.origin {
			desc := fmt.Sprintf("Arbitrary origin %q reflected in Access-Control-Allow-Origin without allow-list validation.", r.origin)
			if r.origin == "null" {
				desc = "The null origin is trusted; sandboxed iframes and local files can make credentialed cross-origin requests."
			}
			return finding.Finding{
				Category:    finding.CategoryCORS,
				Label:       "CORS Policy",
				Severity:    finding.High,
				Status:      finding.StatusVulnerable,
				Description: desc,
				Remediation: "Validate the Origin header against a strict allow-list of exact origins; never echo it back.",
				Evidence:    evidence(r),
			}
		}
	}

	for _, r := range responses {
		if r.allowOrigin == "*" {
			detail := ""
			if baselineWildcard {
				detail = "wildcard also present without an Origin header"
			}
			f := finding.Finding{
				Category:    finding.CategoryCORS,
				Label:       "CORS Policy",
				Severity:    finding.Medium,
				Status:      finding.StatusVulnerable,
				Description: "CORS allows requests from any origin (wildcard, without credentials).",
				Remediation: "Restrict CORS to specific trusted origins; avoid wildcard in production.",
				Evidence:    evidence(r),
			}
			f.Evidence.Detail = detail
			return f
		}
	}

	return finding.Finding{
		Category:    finding.CategoryCORS,
		Label:       "CORS Policy",
		Severity:    finding.Info,
		Status:      finding.StatusSafe,
		Description: "CORS policy is restrictive: untrusted origins are not granted access.",
		Remediation: "Review the origin allow-list periodically.",
		Evidence: finding.Evidence{
			RequestsSent:    sent,
			TransportErrors: transportErrs,
			Detail:          "no Access-Control-Allow-Origin grant for attacker origins",
		},
	}
}
