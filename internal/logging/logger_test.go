package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWriterFiltersByVerbosity(t *testing.T) {
	var buf bytes.Buffer
	quiet := NewWriter(&buf, Options{})
	quiet.Debug("hidden")
	quiet.Warn("shown", zap.String("category", "kids"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "kids") {
		t.Fatalf("warn line missing: %q", out)
	}

	buf.Reset()
	verbose := NewWriter(&buf, Options{Verbose: true, JSON: true})
	verbose.Debug("cohort matched", zap.Int("attempts", 3))
	if !strings.Contains(buf.String(), `"attempts":3`) {
		t.Fatalf("expected JSON debug line, got %q", buf.String())
	}
}

func TestNewBuildsStderrLogger(t *testing.T) {
	logger, err := New(Options{Verbose: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("verbose logger should enable debug")
	}
}
