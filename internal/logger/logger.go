// Package logger provides levelled logging for the ncfp CLI.
// A Logger is created once by the CLI and handed to each component;
// Debug and Info lines are printed only in verbose mode, while Warn and
// Error lines are always printed. An optional log file receives every line.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes prefixed log lines to a console writer and an optional file.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	output  io.Writer
	file    io.Writer
	prefix  string
}

// New creates a logger writing to w. A nil w defaults to os.Stderr.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{output: w, verbose: verbose}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{output: io.Discard}
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// SetFile tees every log line, regardless of level, to w.
func (l *Logger) SetFile(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.file = w
}

// WithPrefix returns a logger sharing l's outputs that prepends prefix to messages.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		verbose: l.verbose,
		output:  l.output,
		file:    l.file,
		prefix:  l.prefix + prefix,
	}
}

func (l *Logger) write(console bool, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf(format, args...)
	if console {
		fmt.Fprint(l.output, line)
	}
	if l.file != nil {
		fmt.Fprint(l.file, line)
	}
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.write(l.IsVerbose(), "[DEBUG] "+l.prefix+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.write(l.IsVerbose(), "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.write(l.IsVerbose(), "[INFO] "+l.prefix+format+"\n", args...)
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.write(true, "[WARN] "+l.prefix+format+"\n", args...)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.write(true, "[ERROR] "+l.prefix+format+"\n", args...)
}
