package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
		"fatal":   LevelFatal,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestChildLoggerFollowsRootLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "text"
	root := NewLogrusLogger(cfg)

	var buf bytes.Buffer
	root.SetOutput(&buf)
	child := root.WithField("component", "hub")

	child.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	root.SetLevel(LevelDebug)
	child.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected child debug line after root level change, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "component=hub") {
		t.Errorf("expected component field, got %q", buf.String())
	}
}
