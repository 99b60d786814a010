// Package logger provides a small module-tagged logging facade over zerolog.
// Components receive a *Logger at construction time; nothing logs through a
// package-level default.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with a fixed module tag.
type Logger struct {
	zl     zerolog.Logger
	module string
}

// New creates a logger writing to w at the given level.
// Unknown or empty levels fall back to info.
func New(w io.Writer, module, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Str("module", module).Logger()
	return &Logger{zl: zl, module: module}
}

// NewDefault creates a logger for the given module writing to stderr at info level.
func NewDefault(module string) *Logger {
	return New(os.Stderr, module, "info")
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Module returns the module tag.
func (l *Logger) Module() string { return l.module }

// Debug logs at debug level with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) { l.emit(l.zl.Debug(), msg, keyvals) }

// Info logs at info level with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) { l.emit(l.zl.Info(), msg, keyvals) }

// Warn logs at warn level with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) { l.emit(l.zl.Warn(), msg, keyvals) }

// Error logs at error level with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) { l.emit(l.zl.Error(), msg, keyvals) }

func (l *Logger) emit(ev *zerolog.Event, msg string, keyvals []any) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(msg)
}
