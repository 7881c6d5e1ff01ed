
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	l *slog.Logger
}

// New logs at info level to stderr.
func New() *Logger { return NewWithLevel(os.Stderr, "info") }

// NewWithLevel accepts debug, info, warn or error; anything else is info.
func NewWithLevel(w io.Writer, level string) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{l: slog.New(h)}
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a logger that adds key=value to every record.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{l: l.l.With(key, value)}
}

func (l *Logger) Slog() *slog.Logger { return l.l }

func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Error(fmt.Sprintf(format, args...))
}
