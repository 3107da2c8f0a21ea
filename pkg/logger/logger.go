// Package logger configures the process-wide structured logger. Logs are
// JSON lines written by zap and consumed through the logr facade so library
// code never depends on zap directly.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/rtex/pkg/settings"
)

type loggerContextKey struct{}

const (
	CommitKey    = "commit"
	VersionKey   = "version"
	BuildTimeKey = "build_time"
	GoVersionKey = "go_version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
	WidgetKey    = "widget"
)

var (
	mu sync.Mutex

	globalZapLogger  *zap.Logger
	globalLogrLogger *logr.Logger
	closer           io.Closer

	defaultNoopLogger = logr.Discard()
)

// Options configures Setup.
type Options struct {
	// Level is a zap level: -1 debug, 0 info, 1 warn. Verbosity V(n) maps to
	// zap level -n, so V(2) needs Level <= -2.
	Level int8
	// Path is a file to append to. Ignored when Writer is set.
	Path string
	// Writer receives log lines. When both Writer and Path are empty logging
	// is disabled.
	Writer io.Writer
}

// Setup builds the global logger. Calling it again replaces the previous
// logger and closes the file it owned.
func Setup(opts Options) (*logr.Logger, error) {
	w := opts.Writer
	var c io.Closer
	if w == nil && opts.Path != "" {
		f, err := openLogFile(opts.Path)
		if err != nil {
			return &defaultNoopLogger, err
		}
		w, c = f, f
	}
	if w == nil {
		mu.Lock()
		defer mu.Unlock()
		resetLocked()
		return &defaultNoopLogger, nil
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(zapcore.Level(opts.Level)),
	).With([]zapcore.Field{
		zap.String(CommitKey, settings.VersionInformation.Commit),
		zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
		zap.String(GoVersionKey, goVersion),
	})

	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
	gl := zapr.NewLogger(zl)

	mu.Lock()
	defer mu.Unlock()
	resetLocked()
	globalZapLogger = zl
	globalLogrLogger = &gl
	closer = c
	return globalLogrLogger, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func resetLocked() {
	if globalZapLogger != nil {
		_ = globalZapLogger.Sync()
	}
	if closer != nil {
		_ = closer.Close()
	}
	globalZapLogger, globalLogrLogger, closer = nil, nil, nil
}

// WithLogger returns a context carrying log. A context that already holds
// the same logger is returned unchanged.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the logger stored in ctx, the global logger, or a
// no-op logger, in that order.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	return Global()
}

// Global returns the logger built by Setup, or a no-op logger.
func Global() *logr.Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Noop returns a logger that discards everything.
func Noop() *logr.Logger {
	return &defaultNoopLogger
}

// ForWidget returns log tagged with a widget name.
func ForWidget(log *logr.Logger, name string) logr.Logger {
	return log.WithValues(WidgetKey, name)
}

// Sync flushes buffered entries and closes the log file. Call it before
// exit, typically via defer in main.
func Sync() {
	mu.Lock()
	zl := globalZapLogger
	mu.Unlock()
	if zl == nil {
		return
	}
	if err := zl.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

// Close flushes and releases the sink. The global logger becomes a no-op.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	resetLocked()
}

// isIgnorableSyncError returns true for common Sync errors on pipes and TTYs.
// Windows consoles can return ERROR_INVALID_HANDLE wrapped in *os.PathError,
// which does not compare equal to syscall.EINVAL, so we also string-match.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
