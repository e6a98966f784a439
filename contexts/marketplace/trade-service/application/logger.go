package application

import "log/slog"

// resolveLogger keeps logging nil-safe for modules wired without one.
func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
