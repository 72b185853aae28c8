package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinnerBasic(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Building...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Building...") {
		t.Errorf("spinner output = %q, want message", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	s := newSpinnerTo(ctx, &buf, "Rendering...")
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestWithSpinner(t *testing.T) {
	old := uiOut
	uiOut = &bytes.Buffer{}
	t.Cleanup(func() { uiOut = old })

	c := New(&bytes.Buffer{}, LogInfo)
	want := errors.New("boom")
	if err := c.withSpinner(context.Background(), "working", func() error { return want }); err != want {
		t.Errorf("withSpinner() = %v, want %v", err, want)
	}

	c.verbose = true
	called := false
	_ = c.withSpinner(context.Background(), "working", func() error { called = true; return nil })
	if !called {
		t.Error("withSpinner should run fn in verbose mode")
	}
}
