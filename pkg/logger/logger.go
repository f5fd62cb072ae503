// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns a logger with the request ID already attached, so every
// line logged while serving one CLI command or one outgoing API call is
// correlated:
//
//	log := logger.WithCtx(ctx)
//	log.Info("orders fetched", "count", len(orders))
//	// → time=... level=INFO msg="orders fetched" request_id=a1b2c3d4 count=12
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shashiranjanraj/kuman/config"
	"github.com/shashiranjanraj/kuman/pkg/reqid"
)

var L *slog.Logger

func init() {
	L = New(os.Stderr)
	slog.SetDefault(L)
}

// New builds the process logger writing to w. Production environments get
// JSON output, everything else the human-readable text handler.
func New(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level()}

	switch config.AppEnv() {
	case "production", "prod":
		return slog.New(slog.NewJSONHandler(w, opts))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

func level() slog.Level {
	switch strings.ToLower(config.LogLevel()) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	switch config.AppEnv() {
	case "production", "prod":
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// SetOutput swaps the destination of the base logger (the CLI routes logs
// to stderr, tests to io.Discard).
func SetOutput(w io.Writer) {
	L = New(w)
	slog.SetDefault(L)
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns a *slog.Logger pre-tagged with the request_id found in ctx.
// An injected logger wins; otherwise the base logger is tagged with the
// reqid value, or returned unchanged when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if id := reqid.FromCtx(ctx); id != "" {
		return L.With("request_id", id)
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
