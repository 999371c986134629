// Package defaults provides canonical default values for the probe engine.
// This is the single source of truth for runtime configuration defaults.
//
// Usage:
//
//	cfg.Concurrency = defaults.ConcurrencyBurst
//	cfg.BurstSize = defaults.BurstSize
//
// Do not hardcode values like `Concurrency: 10` elsewhere; reference the
// appropriate constant from this package.
package defaults

// Version is the current engine version.
const Version = "1.2.0"

// Concurrency settings for worker pools and parallel probe execution.
const (
	// ConcurrencySequential is for probes that must issue requests one
	// at a time (1).
	ConcurrencySequential = 1

	// ConcurrencyProbes is the number of category probes allowed to run
	// in parallel within one suite invocation (5).
	ConcurrencyProbes = 5

	// ConcurrencyBurst is the in-flight request cap for the rate-limit
	// burst probe (10). Deliberately well below BurstSize so a burst
	// exercises the target's limiter rather than the local socket pool.
	ConcurrencyBurst = 10
)

// BurstSize is the number of requests fired by the rate-limit probe.
const BurstSize = 50

// BurstPacingRPS is the client-side dispatch rate cap for the burst
// probe, in requests per second. It keeps the burst realistic without
// exhausting the local network stack.
const BurstPacingRPS = 100

// Content type constants for request construction.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// NormalizationScale is the upper bound of the risk score range (0-100).
const NormalizationScale = 100.0

// BodySnippetSize is the maximum number of response body bytes retained
// in a probe result envelope (8KB). Enough for signature matching and
// evidence without holding full payloads in memory.
const BodySnippetSize = 8 * 1024

// UserAgent identifies probe traffic in target access logs.
const UserAgent = "vaptprobe/" + Version
