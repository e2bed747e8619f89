package internal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes timestamped, leveled lines to a file. A nil *Logger discards
// everything, so components can hold one unconditionally.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	verbose bool
}

func NewLogger(path string, verbose bool) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{w: f, closer: f, verbose: verbose}, nil
}

// NewWriterLogger logs to w without owning it.
func NewWriterLogger(w io.Writer, verbose bool) *Logger {
	return &Logger{w: w, verbose: verbose}
}

func (l *Logger) line(level, format string, args ...interface{}) {
	if l == nil {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s [%s] %s\n", ts, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", format, args...)
}

// Debug logs only when the logger was created verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.line("DEBUG", format, args...)
}

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
