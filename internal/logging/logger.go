// Package logging sets up the daemon's JSONL log file under the XDG
// state directory.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Runtime is an open logger plus the file backing it.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	file   *os.File
}

// Close releases the log file handle.
func (r Runtime) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// New opens (or creates, append-only) the log file and returns a
// slog.Logger writing one JSON object per line.
func New() (Runtime, error) {
	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return Runtime{Logger: logger, Path: path, file: f}, nil
}

// resolveLogPath prefers $XDG_STATE_HOME, falling back to ~/.local/state.
func resolveLogPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "audioprofiles", "log.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "audioprofiles", "log.jsonl"), nil
}
