package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger(t *testing.T) {
	t.Run("debug suppressed by default", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewConsole(ConsoleParams{Output: &buf})
		l.Debug("hidden", "k", "v")
		if buf.Len() != 0 {
			t.Fatalf("expected no output, got %q", buf.String())
		}
	})

	t.Run("debug enabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewConsole(ConsoleParams{Output: &buf, Debug: true})
		l.Debug("visible", "node", "c1")
		if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "c1") {
			t.Fatalf("expected message with keyvals, got %q", buf.String())
		}
	})

	t.Run("with carries keyvals", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewConsole(ConsoleParams{Output: &buf}).With("view", "puzzle-focus")
		l.Warn("missing reference")
		if !strings.Contains(buf.String(), "puzzle-focus") {
			t.Fatalf("expected child keyvals, got %q", buf.String())
		}
	})
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected non-nil logger")
	}
	OrNop(nil).Error("discarded")
}
