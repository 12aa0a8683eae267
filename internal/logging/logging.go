// Package logging provides the slog injection helpers used across the
// publisher.
//
// Conventions:
//   - Loggers are dependency-injected, never global
//   - Each component scopes its logger once at construction with slog.With
//   - A nil logger means "discard"; components never check for nil themselves
//   - Output format and level are configured only in main()
//
// Publishing is a cold path; logging happens at lifecycle boundaries
// (publish start, upload retries, cleanup), never per file or per byte.
package logging

import (
	"context"
	"log/slog"
)

// discardHandler drops all records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns logger if non-nil, otherwise a discard logger. This is the
// standard pattern for optional logger parameters:
//
//	func New(logger *slog.Logger) *Publisher {
//	    logger = logging.Default(logger)
//	    return &Publisher{logger: logger.With("component", "publisher")}
//	}
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}
