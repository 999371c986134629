package finding

// Severity represents the severity level of a security finding.
// All values are lowercase strings, matching the serialized report format.
type Severity string

const (
	// Critical represents immediate compromise potential (SQL injection,
	// credentialed wildcard CORS).
	Critical Severity = "critical"

	// High represents significant impact requiring prompt fix (reflected
	// XSS, auth bypass).
	High Severity = "high"

	// Medium represents moderate impact (missing rate limiting, wildcard
	// CORS without credentials).
	Medium Severity = "medium"

	// Low represents limited impact (missing hardening header).
	Low Severity = "low"

	// Info represents informational findings with no direct impact.
	Info Severity = "info"
)

// Severities lists all levels from most to least severe. Iteration over
// this slice is the canonical severity ordering; summaries and reports
// must use it so output is stable across runs.
func Severities() []Severity {
	return []Severity{Critical, High, Medium, Low, Info}
}

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case Critical, High, Medium, Low, Info:
		return true
	}
	return false
}

// Weight returns the risk-score weight used by the aggregator.
// Critical=10, High=5, Medium=2, Low=1, Info=0.
func (s Severity) Weight() int {
	switch s {
	case Critical:
		return 10
	case High:
		return 5
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}
