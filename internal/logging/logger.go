// Package logging defines the structured-logging interface used by the
// transport, the auth workflows and the CLI. Implementations wrap slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "login complete", "uh", uh)
type Logger interface {
	// Debug logs wire-level detail (payloads, call ids).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs workflow milestones.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs retries and rejected credential material.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
