// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the slog logger shared by every tutor component.
//
// The TUI owns the terminal, so by default records go to
// ~/.tutor/tutor.log rather than stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/tutor/internal/util"
)

// Special File values.
const (
	FileStderr = "-"
	FileOff    = "off"
)

// Options selects level, handler format and destination.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	File   string // path, "-" for stderr, "off" to discard
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger and a closer for its destination. The closer must
// be called on exit; it is a no-op for stderr and discarded output.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	switch strings.ToLower(opts.File) {
	case FileOff:
		return slog.New(slog.DiscardHandler), closer, nil
	case FileStderr, "":
		w = os.Stderr
	default:
		path := util.ExpandHome(opts.File)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}

	return slog.New(newHandler(w, opts.Format, handlerOpts)), closer, nil
}

// NewWriter returns a logger writing to w. Used by tests and by commands
// that log to a caller-supplied stream.
func NewWriter(w io.Writer, level, format string) *slog.Logger {
	return slog.New(newHandler(w, format, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to a slog.Level. Unknown names are Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
