// Package applog configures structured logging for the application. Log
// records go to stderr and, once the UI is up, to any registered sinks
// (the console dock). Sinks are invoked on the logging goroutine; UI
// sinks must marshal onto the UI thread themselves.
package applog

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu    sync.Mutex
	sinks []func(line string)
)

// Init installs the default logger at the given level.
func Init(level slog.Level) {
	h := slog.NewTextHandler(io.MultiWriter(os.Stderr, sinkWriter{}), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(h))
}

// FromEnv reads the log level from NEURON_TRACER_LOG.
func FromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("NEURON_TRACER_LOG")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

// AddSink registers a receiver for formatted log lines.
func AddSink(fn func(line string)) {
	mu.Lock()
	defer mu.Unlock()
	sinks = append(sinks, fn)
}

// sinkWriter fans formatted records out to the registered sinks. The
// text handler emits one record per Write call.
type sinkWriter struct{}

func (sinkWriter) Write(p []byte) (int, error) {
	mu.Lock()
	receivers := append(([]func(string))(nil), sinks...)
	mu.Unlock()
	if len(receivers) == 0 {
		return len(p), nil
	}
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		for _, fn := range receivers {
			fn(line)
		}
	}
	return len(p), nil
}
