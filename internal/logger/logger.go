// Package logger provides leveled logging with support for debug, info,
// warn, and error levels. It wraps the standard log package to provide
// level-based filtering and formatted output.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly, it shouldn't generate any error-level logs.
	ErrorLevel
	// disabledLevel suppresses all output; used by Nop.
	disabledLevel
)

// ParseLevel maps a level name to its Level, defaulting to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides leveled logging
type Logger struct {
	level  Level
	logger *log.Logger
}

// New creates a logger writing to w at the given level.
func New(level Level, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// Default creates an InfoLevel logger on stderr.
func Default() *Logger {
	return New(InfoLevel, os.Stderr)
}

// Nop creates a logger that discards everything.
func Nop() *Logger {
	return New(disabledLevel, io.Discard)
}

func (l *Logger) output(level Level, tag, format string, args ...interface{}) {
	if l == nil || l.level > level {
		return
	}
	_ = l.logger.Output(3, fmt.Sprintf(tag+format, args...))
}

// Debug logs a message at DebugLevel
func (l *Logger) Debug(format string, args ...interface{}) {
	l.output(DebugLevel, "[DEBUG] ", format, args...)
}

// Info logs a message at InfoLevel
func (l *Logger) Info(format string, args ...interface{}) {
	l.output(InfoLevel, "[INFO] ", format, args...)
}

// Warn logs a message at WarnLevel
func (l *Logger) Warn(format string, args ...interface{}) {
	l.output(WarnLevel, "[WARN] ", format, args...)
}

// Error logs a message at ErrorLevel
func (l *Logger) Error(format string, args ...interface{}) {
	l.output(ErrorLevel, "[ERROR] ", format, args...)
}

// Fatal logs a message at ErrorLevel and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf("[FATAL] "+format, args...)
	if l != nil {
		_ = l.logger.Output(3, msg)
	} else {
		log.Print(msg)
	}
	os.Exit(1)
}
