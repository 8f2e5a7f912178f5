// Package logging configures the process-wide slog handler. Operational
// events (skips, write failures, state transitions) go through slog; report
// tables stay on plain stdout.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var levelVar slog.LevelVar

// Setup installs a text handler on stderr at the given level and returns the
// root logger. Level changes after setup go through SetLevel.
func Setup(level string) (*slog.Logger, error) {
	if err := SetLevel(level); err != nil {
		return nil, err
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar})
	log := slog.New(h)
	slog.SetDefault(log)
	return log, nil
}

// SetLevel parses and applies a logging level. Accepts debug, info,
// warn/warning, error (case-insensitive).
func SetLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "", "info":
		levelVar.Set(slog.LevelInfo)
	case "warn", "warning":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
