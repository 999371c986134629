package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/jsonutil"
)

// categoryTitles maps categories to their markdown section titles.
// Section order and titles are part of the report's stable structure;
// downstream consumers chunk on these headers.
var categoryTitles = map[finding.Category]string{
	finding.CategoryInjection: "Injection",
	finding.CategoryAuth:      "Authentication",
	finding.CategoryRateLimit: "Rate Limiting",
	finding.CategoryCORS:      "CORS Policy",
	finding.CategoryHeaders:   "Security Headers",
}

// WriteJSON serializes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := jsonutil.MarshalIndent(r, "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteMarkdown renders the report with one `##` section per concern:
// Target, Summary, then one section per executed category. The section
// set and ordering are stable for a given category list.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder

	b.WriteString("# API Security Assessment Report\n\n")

	b.WriteString("## Target\n\n")
	fmt.Fprintf(&b, "- Endpoint: `%s`\n", r.Target.URL)
	fmt.Fprintf(&b, "- Method: `%s`\n", r.Target.Method)
	if r.RunID != "" {
		fmt.Fprintf(&b, "- Run ID: `%s`\n", r.RunID)
	}
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	fmt.Fprintf(&b, "- Engine: %s\n\n", r.Engine)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Risk score: %.0f / 100\n", r.Summary.RiskScore)
	for _, sev := range finding.Severities() {
		fmt.Fprintf(&b, "- %s: %d\n", titleCase(string(sev)), r.Summary.Count(sev))
	}
	b.WriteString("\n")

	for _, cat := range r.CategoriesRun {
		title := categoryTitles[cat]
		if title == "" {
			title = string(cat)
		}
		fmt.Fprintf(&b, "## %s\n\n", title)

		fs := r.FindingsFor(cat)
		if len(fs) == 0 {
			b.WriteString("No findings recorded.\n\n")
			continue
		}
		for _, f := range fs {
			fmt.Fprintf(&b, "### %s: %s (%s)\n\n", f.Label, f.Status, f.Severity)
			fmt.Fprintf(&b, "%s\n\n", f.Description)
			if ev := evidenceLine(f.Evidence); ev != "" {
				fmt.Fprintf(&b, "Evidence: %s\n\n", ev)
			}
			fmt.Fprintf(&b, "Remediation: %s\n\n", f.Remediation)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func evidenceLine(ev finding.Evidence) string {
	var parts []string
	if ev.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status %d", ev.StatusCode))
	}
	if ev.Header != "" {
		parts = append(parts, fmt.Sprintf("header `%s`", ev.Header))
	}
	if ev.Signature != "" {
		parts = append(parts, fmt.Sprintf("signature `%s`", ev.Signature))
	}
	if ev.Payload != "" {
		parts = append(parts, fmt.Sprintf("payload `%s`", ev.Payload))
	}
	if ev.FirstSignalOrdinal > 0 {
		parts = append(parts, fmt.Sprintf("first rate-limit signal at position %d", ev.FirstSignalOrdinal))
	}
	if ev.RequestsSent > 0 {
		parts = append(parts, fmt.Sprintf("%d requests sent", ev.RequestsSent))
	}
	if ev.TransportErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d transport errors", ev.TransportErrors))
	}
	if ev.Error != "" {
		parts = append(parts, fmt.Sprintf("error: %s", ev.Error))
	}
	if ev.Detail != "" {
		parts = append(parts, ev.Detail)
	}
	return strings.Join(parts, "; ")
}
