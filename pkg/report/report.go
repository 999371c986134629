// Package report assembles probe findings into the final report value and
// serializes it to JSON and markdown with stable, headered sections so
// downstream chunking sees consistent boundaries.
package report

import (
	"time"

	"github.com/vaptprobe/vaptprobe/pkg/defaults"
	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/scoring"
	"github.com/vaptprobe/vaptprobe/pkg/target"
)

// TargetSnapshot is the immutable target description embedded in a report.
type TargetSnapshot struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

// Report is the aggregate output of a full probe run. It is fully
// determined by the target, the categories run and the findings sequence;
// run metadata (ID, timestamps) is stamped separately so Build stays a
// pure function.
type Report struct {
	RunID         string             `json:"run_id,omitempty"`
	Engine        string             `json:"engine"`
	GeneratedAt   time.Time          `json:"generated_at,omitzero"`
	Duration      time.Duration      `json:"duration,omitempty,format:nano"`
	Target        TargetSnapshot     `json:"target"`
	CategoriesRun []finding.Category `json:"categories_run"`
	Findings      []finding.Finding  `json:"findings"`
	Summary       scoring.Summary    `json:"summary"`
}

// Build assembles a report from its inputs. Pure: no I/O, no clock, no
// mutation of inputs; identical inputs always produce an identical
// report. Finding order is preserved as given (execution order).
func Build(tgt *target.Target, categoriesRun []finding.Category, findings []finding.Finding) *Report {
	cats := append([]finding.Category(nil), categoriesRun...)
	fs := append([]finding.Finding(nil), findings...)

	return &Report{
		Engine:        "vaptprobe " + defaults.Version,
		Target:        TargetSnapshot{URL: tgt.URL(), Method: tgt.Method()},
		CategoriesRun: cats,
		Findings:      fs,
		Summary:       scoring.Aggregate(fs),
	}
}

// Stamp attaches run metadata after building. Returns the receiver for
// chaining.
func (r *Report) Stamp(runID string, generatedAt time.Time, elapsed time.Duration) *Report {
	r.RunID = runID
	r.GeneratedAt = generatedAt
	r.Duration = elapsed
	return r
}

// FindingsFor returns the findings belonging to one category, in
// execution order.
func (r *Report) FindingsFor(cat finding.Category) []finding.Finding {
	var out []finding.Finding
	for _, f := range r.Findings {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}

// Vulnerable reports whether any finding has vulnerable status.
func (r *Report) Vulnerable() bool {
	for _, f := range r.Findings {
		if f.Status == finding.StatusVulnerable {
			return true
		}
	}
	return false
}
