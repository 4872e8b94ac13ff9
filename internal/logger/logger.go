// Package logger provides the process-level logger used by the distill
// command, and a slog handler that routes component logs through it.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

// Log level constants
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	DISABLED
)

// LogFormat defines how log messages are formatted
type LogFormat int

// Log format constants
const (
	TEXT LogFormat = iota
	JSON
)

var levelNames = map[LogLevel]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARN:     "WARN",
	ERROR:    "ERROR",
	DISABLED: "DISABLED",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger writes leveled messages with a context path and fields. Loggers
// derived with WithField or WithContext share the parent's output and lock.
type Logger struct {
	level       LogLevel
	format      LogFormat
	out         io.Writer
	fields      map[string]interface{}
	contextPath []string
	mu          *sync.Mutex
}

// Config holds configuration options for the logger
type Config struct {
	Level       LogLevel
	Format      LogFormat
	Output      io.Writer
	DefaultTags map[string]interface{}
}

// DefaultConfig returns a default logger configuration. Output goes to
// stderr so stdout stays free for the MCP stdio transport.
func DefaultConfig() *Config {
	return &Config{
		Level:       INFO,
		Format:      TEXT,
		Output:      os.Stderr,
		DefaultTags: map[string]interface{}{"service": "distill"},
	}
}

// New creates a new logger with the given configuration
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	fields := make(map[string]interface{}, len(config.DefaultTags))
	for k, v := range config.DefaultTags {
		fields[k] = v
	}

	return &Logger{
		level:  config.Level,
		format: config.Format,
		out:    out,
		fields: fields,
		mu:     &sync.Mutex{},
	}
}

// Level returns the logger's minimum log level
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel sets the logger's minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) derive(fields map[string]interface{}, contexts []string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &Logger{
		level:       l.level,
		format:      l.format,
		out:         l.out,
		fields:      merged,
		contextPath: append(append([]string{}, l.contextPath...), contexts...),
		mu:          l.mu,
	}
}

// WithField returns a new logger with the field added to its context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.derive(map[string]interface{}{key: value}, nil)
}

// WithFields returns a new logger with multiple fields added to its context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(fields, nil)
}

// WithContext returns a new logger with a context path
func (l *Logger) WithContext(contexts ...string) *Logger {
	return l.derive(nil, contexts)
}

// Debug logs a message at DEBUG level. Args format msg printf-style.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	caller := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	l.write(level, msg, caller, time.Now(), nil)
}

// write emits one entry. extra fields override the logger's own.
func (l *Logger) write(level LogLevel, msg, caller string, ts time.Time, extra map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || l.level == DISABLED {
		return
	}

	fields := l.fields
	if len(extra) > 0 {
		fields = make(map[string]interface{}, len(l.fields)+len(extra))
		for k, v := range l.fields {
			fields[k] = v
		}
		for k, v := range extra {
			fields[k] = v
		}
	}

	timestamp := ts.UTC().Format(time.RFC3339)
	var output string
	if l.format == TEXT {
		contextStr := ""
		if len(l.contextPath) > 0 {
			contextStr = "[" + strings.Join(l.contextPath, ".") + "] "
		}

		fieldsStr := ""
		if len(fields) > 0 {
			keys := sortedKeys(fields)
			pairs := make([]string, len(keys))
			for i, k := range keys {
				pairs[i] = fmt.Sprintf("%s=%v", k, fields[k])
			}
			fieldsStr = " " + strings.Join(pairs, " ")
		}

		output = fmt.Sprintf("%s [%s] %s%s (%s)%s\n", timestamp, level, contextStr, msg, caller, fieldsStr)
	} else {
		entry := make(map[string]interface{}, len(fields)+5)
		for k, v := range fields {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			entry[k] = v
		}
		entry["timestamp"] = timestamp
		entry["level"] = level.String()
		entry["message"] = msg
		entry["caller"] = caller
		if len(l.contextPath) > 0 {
			entry["context"] = strings.Join(l.contextPath, ".")
		}

		data, err := json.Marshal(entry)
		if err != nil {
			data, _ = json.Marshal(map[string]string{
				"timestamp": timestamp,
				"level":     level.String(),
				"message":   msg,
				"error":     err.Error(),
			})
		}
		output = string(data) + "\n"
	}

	fmt.Fprint(l.out, output)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseLevel converts a string level to a LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "DISABLED", "OFF":
		return DISABLED
	default:
		return INFO
	}
}

// ParseFormat converts "json" to JSON; anything else is TEXT.
func ParseFormat(format string) LogFormat {
	if strings.EqualFold(format, "json") {
		return JSON
	}
	return TEXT
}

// Global default logger
var defaultLogger = New(DefaultConfig())

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the global default logger
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// GetLogger returns a logger with the given name as a field
func GetLogger(name string) *Logger {
	return defaultLogger.WithField("name", name)
}
