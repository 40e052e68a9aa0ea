// Package logging is the structured logger handed to every podguild
// component. The only implementation wraps log/slog.
package logging

import "context"

// Logger takes key/value pairs after the message:
//
//	log.Info(ctx, "blob stored", "blob_id", id, "bytes", n)
type Logger interface {
	// Debug is used for pipeline state transitions and wire details.
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn covers recoverable problems, e.g. a best-effort logo upload failing.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying args on every record.
	With(args ...any) Logger
}
