package logger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// MaxLogLines is the number of lines the log file is trimmed back to
const MaxLogLines = 5000

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = map[LogLevel]string{
	LogLevelTrace: "TRACE",
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLogLevel parses a level name; anything unrecognised means info
func ParseLogLevel(s string) LogLevel {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LogLevelWarn
	}
	for level, name := range levelNames {
		if name == s {
			return level
		}
	}
	return LogLevelInfo
}

// logFile is what the logger writes to. *os.File satisfies it.
type logFile interface {
	io.ReadWriteSeeker
	Truncate(size int64) error
	Close() error
}

// LimitedLogger is a leveled logger whose file never grows past MaxLogLines lines
type LimitedLogger struct {
	mu        sync.Mutex
	out       io.Writer
	file      logFile // nil when writing to a plain stream
	lineCount int
	level     LogLevel
}

var (
	globalMu     sync.RWMutex
	globalLogger *LimitedLogger
	stderrLogger = &LimitedLogger{out: os.Stderr, level: LogLevelInfo}
)

// NewLimitedLogger creates a logger appending to file and installs it as the
// package-level logger.
func NewLimitedLogger(file *os.File, level LogLevel) *LimitedLogger {
	ll := &LimitedLogger{out: file, file: file, level: level}
	ll.countExistingLines()

	globalMu.Lock()
	globalLogger = ll
	globalMu.Unlock()
	return ll
}

// NewStreamLogger creates a logger for a stream that is never trimmed (stderr, tests)
func NewStreamLogger(w io.Writer, level LogLevel) *LimitedLogger {
	return &LimitedLogger{out: w, level: level}
}

func current() *LimitedLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	return stderrLogger
}

// SetGlobal installs ll as the package-level logger. A nil ll restores stderr.
func SetGlobal(ll *LimitedLogger) {
	globalMu.Lock()
	globalLogger = ll
	globalMu.Unlock()
}

func (ll *LimitedLogger) SetLevel(level LogLevel) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.level = level
}

func (ll *LimitedLogger) enabled(level LogLevel) bool {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	return level >= ll.level
}

func (ll *LimitedLogger) logf(level LogLevel, format string, v ...any) {
	if !ll.enabled(level) {
		return
	}
	line := fmt.Sprintf("%s [%s] %s\n", time.Now().Format("2006/01/02 15:04:05"), level, fmt.Sprintf(format, v...))
	_, _ = ll.Write([]byte(line))
}

func (ll *LimitedLogger) Debug(format string, v ...any) { ll.logf(LogLevelDebug, format, v...) }

func (ll *LimitedLogger) Info(format string, v ...any) { ll.logf(LogLevelInfo, format, v...) }

func (ll *LimitedLogger) Warn(format string, v ...any) { ll.logf(LogLevelWarn, format, v...) }

func (ll *LimitedLogger) Error(format string, v ...any) { ll.logf(LogLevelError, format, v...) }

// Fatal logs at error level and exits with code 1
func (ll *LimitedLogger) Fatal(format string, v ...any) {
	ll.logf(LogLevelError, format, v...)
	os.Exit(1)
}

// Package-level helpers route to the installed logger, or stderr before setup

func Debug(format string, v ...any) { current().Debug(format, v...) }

func Info(format string, v ...any) { current().Info(format, v...) }

func Warn(format string, v ...any) { current().Warn(format, v...) }

func Error(format string, v ...any) { current().Error(format, v...) }

func Fatal(format string, v ...any) { current().Fatal(format, v...) }

// Trace returns a function that logs how long an operation took.
// Usage: defer logger.Trace("operation")()
func Trace(name string) func() {
	ll := current()
	if !ll.enabled(LogLevelTrace) {
		return func() {}
	}
	start := time.Now()
	return func() {
		ll.logf(LogLevelTrace, "%s: %v", name, time.Since(start))
	}
}

// Write implements io.Writer so the standard log package can be redirected here
func (ll *LimitedLogger) Write(p []byte) (int, error) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	n, err := ll.out.Write(p)
	if err != nil || ll.file == nil {
		return n, err
	}

	ll.lineCount += bytes.Count(p, []byte("\n"))
	if ll.lineCount > MaxLogLines {
		ll.trim()
	}
	return n, nil
}

func (ll *LimitedLogger) countExistingLines() {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if _, err := ll.file.Seek(0, io.SeekStart); err != nil {
		return
	}
	scanner := bufio.NewScanner(ll.file)
	for scanner.Scan() {
		ll.lineCount++
	}
	_, _ = ll.file.Seek(0, io.SeekEnd)
}

// trim rewrites the file keeping only its last MaxLogLines lines
func (ll *LimitedLogger) trim() {
	if _, err := ll.file.Seek(0, io.SeekStart); err != nil {
		return
	}
	var lines []string
	scanner := bufio.NewScanner(ll.file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > MaxLogLines {
		lines = lines[len(lines)-MaxLogLines:]
	}

	_ = ll.file.Truncate(0)
	_, _ = ll.file.Seek(0, io.SeekStart)
	w := bufio.NewWriter(ll.file)
	for _, line := range lines {
		_, _ = w.WriteString(line + "\n")
	}
	_ = w.Flush()
	ll.lineCount = len(lines)
}

// Close closes the underlying file, if any
func (ll *LimitedLogger) Close() error {
	if ll.file == nil {
		return nil
	}
	return ll.file.Close()
}
