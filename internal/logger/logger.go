// Package logger provides the process-wide diagnostic logger for pdfrag.
//
// Debug, Info and Warn lines are only written in verbose mode (--verbose),
// which makes the ingestion and retrieval pipelines visible step by step.
// Error lines are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Writer returns the current output writer.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Section prints a pipeline section header in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Debug prints a step-level message in verbose mode.
func Debug(format string, args ...any) {
	write(false, "DEBUG", format, args...)
}

// Info prints an informational message in verbose mode.
func Info(format string, args ...any) {
	write(false, "INFO", format, args...)
}

// Warn prints a warning in verbose mode.
func Warn(format string, args ...any) {
	write(false, "WARN", format, args...)
}

// Error prints an error regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "ERROR", format, args...)
}

func write(always bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
}
