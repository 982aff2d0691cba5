package applog

import (
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	cases := []struct {
		env  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Setenv("NEURON_TRACER_LOG", tc.env)
		if got := FromEnv(); got != tc.want {
			t.Errorf("FromEnv() with %q = %v, want %v", tc.env, got, tc.want)
		}
	}
}

func TestSinkReceivesRecords(t *testing.T) {
	Init(slog.LevelInfo)
	var lines []string
	AddSink(func(line string) {
		lines = append(lines, line)
	})

	WithComponent("test").Info("hello", "key", "value")

	if len(lines) == 0 {
		t.Fatal("sink received nothing")
	}
	last := lines[len(lines)-1]
	for _, want := range []string{"hello", "component=test", "key=value"} {
		if !strings.Contains(last, want) {
			t.Errorf("line %q missing %q", last, want)
		}
	}
}

func TestSinkLevelFilter(t *testing.T) {
	Init(slog.LevelWarn)
	var lines []string
	AddSink(func(line string) {
		lines = append(lines, line)
	})

	slog.Info("filtered out")
	before := len(lines)
	slog.Warn("kept")

	if len(lines) != before+1 {
		t.Errorf("got %d new lines, want exactly 1", len(lines)-before)
	}
}
