package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, WarnLevel, ParseLevel("Warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(WarnLevel, &buf)

	l.Debug("d %d", 1)
	l.Info("i %d", 2)
	l.Warn("w %d", 3)
	l.Error("e %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "[DEBUG]")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[WARN] w 3")
	assert.Contains(t, out, "[ERROR] e 4")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("should vanish")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("no panic")
	l.Error("no panic")
}

func TestDebugLoggerEmitsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := New(DebugLevel, &buf)
	l.Debug("x")
	l.Info("y")
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}
