package progress

import (
	"errors"
	"testing"

	"github.com/vaptprobe/vaptprobe/pkg/finding"
)

func TestFunc(t *testing.T) {
	var got []Event
	h := Func(func(ev Event) { got = append(got, ev) })

	h.OnEvent(Event{Category: finding.CategoryCORS, Stage: StageRequest})
	if len(got) != 1 || got[0].Stage != StageRequest {
		t.Fatalf("unexpected events: %+v", got)
	}
	if err := h.Close(); err != nil {
		t.Errorf("func hook close must be a no-op, got %v", err)
	}
}

type recordingHook struct {
	events int
	closed bool
	err    error
}

func (r *recordingHook) OnEvent(Event) { r.events++ }
func (r *recordingHook) Close() error  { r.closed = true; return r.err }

func TestMulti(t *testing.T) {
	t.Run("fan out", func(t *testing.T) {
		a, b := &recordingHook{}, &recordingHook{}
		m := Multi{a, b}

		m.OnEvent(Event{Stage: StageFinding})
		m.OnEvent(Event{Stage: StageCompleted})

		if a.events != 2 || b.events != 2 {
			t.Errorf("expected both hooks to see 2 events, got %d and %d", a.events, b.events)
		}
	})

	t.Run("close all, first error wins", func(t *testing.T) {
		failure := errors.New("close failed")
		a := &recordingHook{err: failure}
		b := &recordingHook{}

		err := Multi{a, b}.Close()
		if !errors.Is(err, failure) {
			t.Errorf("expected first close error, got %v", err)
		}
		if !a.closed || !b.closed {
			t.Error("every hook must be closed even after an error")
		}
	})

	t.Run("empty multi", func(t *testing.T) {
		var m Multi
		m.OnEvent(Event{})
		if err := m.Close(); err != nil {
			t.Errorf("empty multi close: %v", err)
		}
	})
}
