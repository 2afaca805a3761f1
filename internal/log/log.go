package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

var (
	logger    atomic.Pointer[slog.Logger]
	level     = new(slog.LevelVar)
	verbosity atomic.Int32
)

func init() {
	// Warnings reach stderr before flags are parsed.
	InitWithOutput(VerbosityWarn, "text", os.Stderr)
}

// InitWithOutput installs the global logger. format is "json" or "text"; any
// other value means text. Reports go to stdout, so w is normally stderr.
func InitWithOutput(v int, format string, w io.Writer) {
	verbosity.Store(int32(v))
	level.Set(VerbosityToLevel(v))

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: renameLevel}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	logger.Store(l)
	slog.SetDefault(l)
}

func renameLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}

// Verbosity returns the current -v level.
func Verbosity() int {
	return int(verbosity.Load())
}

// V returns the global logger when verbosity is at least v, and a logger
// that drops everything otherwise.
//
//	log.V(log.VerbosityDebug).Debug("hybrid parser diff", "path", path)
func V(v int) *slog.Logger {
	if Verbosity() >= v {
		return logger.Load()
	}
	return slog.New(slog.DiscardHandler)
}

// Component returns the global logger tagged with component=name.
func Component(name string) *slog.Logger {
	return logger.Load().With("component", name)
}

func Error(msg string, args ...any) { logger.Load().Error(msg, args...) }
func Warn(msg string, args ...any)  { logger.Load().Warn(msg, args...) }
func Info(msg string, args ...any)  { logger.Load().Info(msg, args...) }
func Debug(msg string, args ...any) { logger.Load().Debug(msg, args...) }

func Trace(msg string, args ...any) {
	logger.Load().Log(context.Background(), LevelTrace, msg, args...)
}

// Since logs the time elapsed since start at debug level.
func Since(op string, start time.Time, args ...any) {
	if Verbosity() < VerbosityDebug {
		return
	}
	logger.Load().Debug("timing", append(args, "op", op, "elapsed", time.Since(start))...)
}
