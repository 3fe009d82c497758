// Package logger exposes a process-wide leveled logger backed by slog.
// The level and the output sink can be swapped at runtime, which the
// config watcher and the log rotation setup in main rely on.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"log/slog"
)

var (
	level   slog.LevelVar
	current atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(slog.LevelInfo)
	current.Store(build(os.Stdout))
}

func build(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetOutput replaces the sink for all subsequent log lines.
func SetOutput(w io.Writer) {
	current.Store(build(w))
}

// SetLevel accepts debug, info, warn/warning or error. Anything else
// falls back to info.
func SetLevel(name string) {
	level.Set(parseLevel(name))
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

func Debugf(format string, v ...any) {
	current.Load().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	current.Load().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	current.Load().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	current.Load().Error(fmt.Sprintf(format, v...))
}
