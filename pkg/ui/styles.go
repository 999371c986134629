package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

// Color palette matching common security tool conventions
var (
	Primary = lipgloss.Color("#7D56F4") // Purple - brand color

	// Severity colors
	Critical = lipgloss.Color("#FF0000") // Bright red
	High     = lipgloss.Color("#FF6B6B") // Red/Orange
	Medium   = lipgloss.Color("#FFD93D") // Yellow
	Low      = lipgloss.Color("#6BCB77") // Green
	Info     = lipgloss.Color("#4D96FF") // Blue

	// Status colors
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Danger  = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
)

// Pre-configured styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	CategoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D4AA"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	DetailStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	SafeStyle = lipgloss.NewStyle().
			Foreground(Success)

	VulnerableStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	InconclusiveStyle = lipgloss.NewStyle().
				Foreground(Warning)
)

// SeverityStyle returns the style for a severity level.
func SeverityStyle(sev finding.Severity) lipgloss.Style {
	switch sev {
	case finding.Critical:
		return lipgloss.NewStyle().Foreground(Critical).Bold(true)
	case finding.High:
		return lipgloss.NewStyle().Foreground(High).Bold(true)
	case finding.Medium:
		return lipgloss.NewStyle().Foreground(Medium)
	case finding.Low:
		return lipgloss.NewStyle().Foreground(Low)
	default:
		return lipgloss.NewStyle().Foreground(Info)
	}
}

// StatusStyle returns the style for a finding status.
func StatusStyle(status finding.Status) lipgloss.Style {
	switch status {
	case finding.StatusVulnerable:
		return VulnerableStyle
	case finding.StatusSafe:
		return SafeStyle
	default:
		return InconclusiveStyle
	}
}
