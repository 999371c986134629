// Package progress defines the immutable progress events probes emit
// while running, and the hook interface consumers implement to observe
// them. The engine holds no process-wide state: each suite run owns its
// own event stream, so multiple concurrent scans per process are safe.
package progress

import (
	"time"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

// Stage marks where in a probe's lifecycle an event was emitted.
type Stage string

const (
	// StageStarted is emitted once when a category probe begins.
	StageStarted Stage = "started"

	// StageRequest is emitted after each completed request.
	StageRequest Stage = "request"

	// StageFinding is emitted when a probe records a finding.
	StageFinding Stage = "finding"

	// StageCompleted is emitted once when a category probe finishes.
	StageCompleted Stage = "completed"
)

// Event is one immutable progress record. Events are values; consumers
// must not retain pointers into them across calls.
type Event struct {
	Category  finding.Category `json:"category"`
	Stage     Stage            `json:"stage"`
	Requests  int              `json:"requests,omitempty"`
	Latency   time.Duration    `json:"latency,omitempty,format:nano"`
	Transport bool             `json:"transport_error,omitempty"`
	Finding   *finding.Finding `json:"finding,omitempty"`
	At        time.Time        `json:"at"`
}

// Hook consumes progress events. Implementations must be safe for
// concurrent OnEvent calls, since category probes may run in parallel.
type Hook interface {
	OnEvent(Event)
	Close() error
}

// Func adapts a plain function to the Hook interface.
type Func func(Event)

// OnEvent calls the wrapped function.
func (f Func) OnEvent(ev Event) { f(ev) }

// Close is a no-op for function hooks.
func (f Func) Close() error { return nil }

// Multi fans events out to several hooks in order.
type Multi []Hook

// OnEvent forwards the event to every hook.
func (m Multi) OnEvent(ev Event) {
	for _, h := range m {
		h.OnEvent(ev)
	}
}

// Close closes every hook, returning the first error encountered.
func (m Multi) Close() error {
	var first error
	for _, h := range m {
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
