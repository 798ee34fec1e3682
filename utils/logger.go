package utils

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	l *log.Logger
}

// NewLogger creates a Logger writing to stderr at info level.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr, "info")
}

// NewLoggerTo creates a Logger writing to w. Unknown levels fall back to info.
func NewLoggerTo(w io.Writer, level string) *Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return &Logger{
		l: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "2006-01-02 15:04:05",
			Level:           lvl,
		}),
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.l.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.l.Debugf(format, args...)
}
