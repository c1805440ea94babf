// Package logging defines the structured-logging interface used across
// walletmeta. Implementations wrap slog or zerolog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "message posted", "recipient", id, "type", 1)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported values of the log_format setting.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatConsole = "console"
)

// NewLogger builds a Logger for the configured format. "console" selects
// zerolog's human-readable writer; "text" and "json" use slog handlers.
// Unknown formats fall back to JSON. A nil writer means stdout.
func NewLogger(format string, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	switch format {
	case FormatConsole:
		return NewConsoleLogger(w)
	case FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil)))
	default:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
	}
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }
