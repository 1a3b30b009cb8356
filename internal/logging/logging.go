// Package logging configures the structured run log. Every pipeline
// component logs through *slog.Logger; the CLI decides where the output
// goes and tests swap in NopHandler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// maxLogSize triggers a single-generation rotation of the run log.
const maxLogSize = 5 * 1024 * 1024 // 5MB

// Setup opens the run log at logPath and returns a JSON slog logger.
// Verbose mirrors records to stderr and lowers the level to Debug, which
// is where per-command execution lines live; non-verbose runs record
// Info and above in the file only.
func Setup(logPath string, verbose bool) (*slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}
	if err := RotateIfNeeded(logPath); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	var w io.Writer = f
	level := slog.LevelInfo
	if verbose {
		w = io.MultiWriter(f, os.Stderr)
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// RotateIfNeeded moves an oversized log aside, keeping one old generation.
// A missing log is not an error; the next Setup creates it.
func RotateIfNeeded(logPath string) error {
	info, err := os.Stat(logPath)
	if err != nil {
		return nil
	}
	if info.Size() <= maxLogSize {
		return nil
	}

	backup := logPath + ".old"
	os.Remove(backup)
	return os.Rename(logPath, backup)
}

// NopHandler discards all records.
type NopHandler struct{}

func (NopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NopHandler) WithGroup(string) slog.Handler           { return h }
