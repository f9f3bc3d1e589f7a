package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the JSON logger for a bootcamphub process. Every line
// carries the service and environment.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env, service)
}

func newLogger(w io.Writer, env, service string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(h).With("service", service, "env", env)
}
