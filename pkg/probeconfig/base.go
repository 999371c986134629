// Package probeconfig holds configuration fields shared across all
// category probe packages. Embed Base in package-specific Config structs
// to inherit common behavior.
package probeconfig

import (
	"log/slog"
	"time"

	"github.com/vaptprobe/vaptprobe/pkg/duration"
	"github.com/vaptprobe/vaptprobe/pkg/progress"
)

// Base contains the configuration every probe carries.
type Base struct {
	// Timeout bounds each individual request the probe issues.
	Timeout time.Duration `json:"timeout,omitempty,format:nano"`

	// Logger receives structured diagnostics. Defaults to slog.Default().
	Logger *slog.Logger `json:"-"`

	// OnProgress, if set, receives immutable progress events as the
	// probe works. Probes emit; they never read back.
	OnProgress progress.Hook `json:"-"`
}

// Validate fills zero-value fields with defaults. Call from probe
// constructors so configs are always usable.
func (b *Base) Validate() {
	if b.Timeout <= 0 {
		b.Timeout = duration.ProbeTimeout
	}
	if b.Logger == nil {
		b.Logger = slog.Default()
	}
}

// Notify forwards an event to the OnProgress hook if one is set.
func (b *Base) Notify(ev progress.Event) {
	if b.OnProgress != nil {
		if ev.At.IsZero() {
			ev.At = time.Now()
		}
		b.OnProgress.OnEvent(ev)
	}
}
