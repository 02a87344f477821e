package logger

import (
	"log/slog"
	"os"
)

// Initialize installs a JSON slog handler as the process default.
// Logs go to stderr so command output (manifests, addresses) stays on stdout.
func Initialize(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	slog.SetDefault(logger)
}

// Named returns the default logger tagged with a component name.
func Named(name string) *slog.Logger {
	logger := slog.Default()
	if logger == nil {
		return nil
	}

	return logger.With("name", name)
}
