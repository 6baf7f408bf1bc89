package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
)

var (
	defaultLogger *slog.Logger
	defaultMutex  sync.RWMutex
)

func init() {
	defaultLogger = newLogger(os.Stdout, slog.LevelInfo, FormatConsole)
}

// Format is the output format of the logger
type Format int

const (
	FormatConsole Format = iota
	FormatJSON
)

// Default returns the current default logger
func Default() *slog.Logger {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()
	return defaultLogger
}

// SetDefault replaces the default logger
func SetDefault(logger *slog.Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
}

type ctxLoggerKey struct{}

// With binds a logger to the context
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From extracts the logger bound to the context, falling back to the default
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}

// ParseLevel converts a level name to slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, goerr.New("invalid log level", goerr.V("level", s))
	}
}

// ParseFormat converts a format name to Format
func ParseFormat(s string) (Format, error) {
	switch s {
	case "console":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatConsole, goerr.New("invalid log format", goerr.V("format", s))
	}
}

func newLogger(w io.Writer, level slog.Level, format Format) *slog.Logger {
	filter := masq.New(
		masq.WithFieldName("Token"),
		masq.WithFieldPrefix("secret"),
		masq.WithTag("secret"),
	)

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithSource(true),
			clog.WithReplaceAttr(filter),
		)
	}

	return slog.New(handler)
}

// Configure builds a logger and installs it as the default
func Configure(w io.Writer, level slog.Level, format Format) *slog.Logger {
	logger := newLogger(w, level, format)
	SetDefault(logger)
	return logger
}
