package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	defaultLog   atomic.Pointer[Logger]
	defaultMutex sync.Mutex
)

func init() {
	l := Make(os.Stderr)
	defaultLog.Store(&l)
}

// Default returns the logger used by the package-level functions.
func Default() Logger { return *defaultLog.Load() }

// SetDefault replaces the default logger and returns the previous one.
func SetDefault(l Logger) Logger {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	return *defaultLog.Swap(&l)
}

// Config reconfigures the default logger with opts.
func Config(opts ...Option) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	l := defaultLog.Load().Wrap(opts...)
	defaultLog.Store(&l)
}

func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelTrace, msg, attrs)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelDebug, msg, attrs)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelInfo, msg, attrs)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelWarn, msg, attrs)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelError, msg, attrs)
}
