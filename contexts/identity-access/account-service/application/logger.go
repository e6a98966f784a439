package application

import "log/slog"

// resolveLogger falls back to the process default when no logger is injected.
func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
