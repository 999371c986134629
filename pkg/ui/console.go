// Package ui renders findings and run summaries for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
	"github.com/vaptprobe/vaptprobe/pkg/report"
)

// Printer writes styled output to one terminal stream.
type Printer struct {
	w       io.Writer
	noColor bool
}

// NewPrinter creates a printer. noColor disables all styling.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	return &Printer{w: w, noColor: noColor}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if p.noColor {
		return s
	}
	return style.Render(s)
}

// Banner prints the tool header.
func (p *Printer) Banner(version string) {
	fmt.Fprintln(p.w, p.render(TitleStyle, "vaptprobe")+" "+p.render(DetailStyle, version))
	fmt.Fprintln(p.w)
}

// FindingLine formats one finding in single-line style:
// [severity] [category] [status] Label
func (p *Printer) FindingLine(f *finding.Finding) string {
	bracket := func(s string) string { return p.render(BracketStyle, "[") + s + p.render(BracketStyle, "]") }

	parts := []string{
		bracket(p.render(SeverityStyle(f.Severity), string(f.Severity))),
		bracket(p.render(CategoryStyle, string(f.Category))),
		bracket(p.render(StatusStyle(f.Status), string(f.Status))),
		p.render(ValueStyle, f.Label),
	}
	return strings.Join(parts, " ")
}

// Hook returns a progress hook that prints each finding as it is
// recorded. Suitable for sequential probe execution; concurrent category
// probes interleave lines.
func (p *Printer) Hook() progress.Hook {
	return progress.Func(func(ev progress.Event) {
		if ev.Stage == progress.StageFinding && ev.Finding != nil {
			fmt.Fprintln(p.w, p.FindingLine(ev.Finding))
		}
	})
}

// Summary prints the end-of-run report summary.
func (p *Printer) Summary(rep *report.Report) {
	fmt.Fprintln(p.w, p.render(SectionStyle, "Summary"))
	fmt.Fprintf(p.w, "  %s %s\n", p.render(LabelStyle, "Target:"), p.render(ValueStyle, rep.Target.Method+" "+rep.Target.URL))
	fmt.Fprintf(p.w, "  %s %s\n", p.render(LabelStyle, "Run ID:"), p.render(DetailStyle, rep.RunID))
	fmt.Fprintf(p.w, "  %s %s\n", p.render(LabelStyle, "Duration:"), p.render(ValueStyle, rep.Duration.Round(time.Millisecond).String()))

	var counts []string
	for _, sev := range finding.Severities() {
		n := rep.Summary.Count(sev)
		if n == 0 {
			continue
		}
		counts = append(counts, p.render(SeverityStyle(sev), fmt.Sprintf("%d %s", n, sev)))
	}
	if len(counts) == 0 {
		counts = append(counts, p.render(DetailStyle, "no findings"))
	}
	fmt.Fprintf(p.w, "  %s %s\n", p.render(LabelStyle, "Findings:"), strings.Join(counts, ", "))

	scoreStyle := SafeStyle
	switch {
	case rep.Summary.RiskScore >= 50:
		scoreStyle = VulnerableStyle
	case rep.Summary.RiskScore >= 20:
		scoreStyle = InconclusiveStyle
	}
	fmt.Fprintf(p.w, "  %s %s\n", p.render(LabelStyle, "Risk score:"),
		p.render(scoreStyle, fmt.Sprintf("%.0f / 100", rep.Summary.RiskScore)))
}
