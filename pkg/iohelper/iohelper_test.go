package iohelper

import (
	"strings"
	"testing"
)

func TestReadBody(t *testing.T) {
	t.Run("nil reader", func(t *testing.T) {
		data, err := ReadBody(nil, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) != 0 {
			t.Errorf("expected empty slice, got %d bytes", len(data))
		}
	})

	t.Run("limit enforced", func(t *testing.T) {
		data, err := ReadBody(strings.NewReader(strings.Repeat("a", 100)), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(data))
		}
	})

	t.Run("short body read fully", func(t *testing.T) {
		data, err := ReadBody(strings.NewReader("hello"), SmallMaxBodySize)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("expected hello, got %q", data)
		}
	})
}

type closeTracker struct {
	*strings.Reader
	closed bool
}

func (c *closeTracker) Close() error { c.closed = true; return nil }

func TestDrainAndClose(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("leftover data")}
	DrainAndClose(body)

	if !body.closed {
		t.Error("expected body to be closed")
	}
	if body.Len() != 0 {
		t.Errorf("expected body drained, %d bytes left", body.Len())
	}

	// Nil body must not panic.
	DrainAndClose(nil)
}
