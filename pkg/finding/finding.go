// Package finding provides the shared finding types produced by all
// category probes and consumed by the aggregator and report builder.
package finding

// Category identifies a vulnerability test category.
type Category string

const (
	CategoryInjection Category = "injection"
	CategoryAuth      Category = "auth"
	CategoryRateLimit Category = "rate_limit"
	CategoryCORS      Category = "cors"
	CategoryHeaders   Category = "headers"
)

// Categories returns all categories in canonical execution order.
func Categories() []Category {
	return []Category{
		CategoryInjection,
		CategoryAuth,
		CategoryRateLimit,
		CategoryCORS,
		CategoryHeaders,
	}
}

// IsValid reports whether c is a recognized category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryInjection, CategoryAuth, CategoryRateLimit, CategoryCORS, CategoryHeaders:
		return true
	}
	return false
}

// Status is the classification outcome of a finding.
type Status string

const (
	// StatusVulnerable means the probe observed positive evidence of the
	// vulnerability condition.
	StatusVulnerable Status = "vulnerable"

	// StatusSafe means the probe tested the condition and found no
	// evidence of it.
	StatusSafe Status = "safe"

	// StatusInconclusive means the probe could not establish either way,
	// typically because of transport failures or a missing baseline.
	StatusInconclusive Status = "inconclusive"
)

// Evidence captures the subset of probe results that triggered a finding.
// Only the fields relevant to the finding are populated.
type Evidence struct {
	// StatusCode of the triggering response, 0 if none was received.
	StatusCode int `json:"status_code,omitempty"`

	// Header holds a relevant response header in "Name: value" form.
	Header string `json:"header,omitempty"`

	// Signature is the detection pattern that matched the response.
	Signature string `json:"signature,omitempty"`

	// Payload is the exact payload that produced the evidence.
	Payload string `json:"payload,omitempty"`

	// RequestsSent is how many requests the probe executed for this
	// conclusion.
	RequestsSent int `json:"requests_sent,omitempty"`

	// TransportErrors counts requests that failed at the transport layer.
	TransportErrors int `json:"transport_errors,omitempty"`

	// FirstSignalOrdinal is the completion-order position of the first
	// rate-limit signal in a burst (1-based), 0 if none.
	FirstSignalOrdinal int `json:"first_signal_ordinal,omitempty"`

	// Error holds the underlying cause for inconclusive findings.
	Error string `json:"error,omitempty"`

	// Detail carries free-form supporting context (latency outliers,
	// missing header lists, baseline notes).
	Detail string `json:"detail,omitempty"`
}

// Finding is one reportable security observation. Findings are append-only
// within a run and never mutated after creation.
type Finding struct {
	Category    Category `json:"category"`
	Label       string   `json:"label"`
	Severity    Severity `json:"severity"`
	Status      Status   `json:"status"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation"`
	Evidence    Evidence `json:"evidence"`
}
