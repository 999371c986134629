// Package scoring implements the severity aggregator: per-severity finding
// tallies and the overall 0-100 risk score.
package scoring

import (
	"math"

	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

// Summary holds per-severity counts and the overall risk score.
// Count keys always include every severity, so serialized summaries have
// a stable shape even when a level is absent from the findings.
type Summary struct {
	Counts    map[finding.Severity]int `json:"counts"`
	Total     int                      `json:"total"`
	RiskScore float64                  `json:"risk_score"`
}

// Count returns the tally for one severity level.
func (s Summary) Count(sev finding.Severity) int { return s.Counts[sev] }

// Aggregate tallies findings by severity and computes the risk score.
// Deterministic: identical findings always produce an identical summary,
// and count iteration follows the canonical critical-first order.
func Aggregate(findings []finding.Finding) Summary {
	counts := make(map[finding.Severity]int, len(finding.Severities()))
	for _, sev := range finding.Severities() {
		counts[sev] = 0
	}
	for _, f := range findings {
		if f.Severity.IsValid() {
			counts[f.Severity]++
		}
	}

	return Summary{
		Counts:    counts,
		Total:     len(findings),
		RiskScore: riskScore(counts),
	}
}

// riskScore is the weighted sum of severity counts, capped at the
// normalization scale. Weights: critical=10, high=5, medium=2, low=1,
// info=0. Iterating Severities() keeps the arithmetic order stable.
func riskScore(counts map[finding.Severity]int) float64 {
	var raw float64
	for _, sev := range finding.Severities() {
		raw += float64(counts[sev] * sev.Weight())
	}
	return math.Min(raw, defaults.NormalizationScale)
}
