package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARNING": slog.LevelWarn,
		" debug ": slog.LevelDebug,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithFormat(&buf, "info", "json").Info("run finished", "new", 2)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "run finished" || line["app"] != "tendermonitor" {
		t.Fatalf("unexpected record: %v", line)
	}

	buf.Reset()
	NewWithFormat(&buf, "warn", "text").Info("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info must be filtered at warn level")
	}
}
