package logger

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// SlogHandler is a slog.Handler that writes records through a Logger, so
// components logging with log/slog share the command's sink, format and
// level.
type SlogHandler struct {
	logger *Logger
	attrs  map[string]interface{}
	group  string
}

// NewSlogHandler creates a handler writing to l.
func NewSlogHandler(l *Logger) *SlogHandler {
	if l == nil {
		l = GetDefaultLogger()
	}
	return &SlogHandler{logger: l}
}

// NewSlog returns a *slog.Logger backed by l.
func NewSlog(l *Logger) *slog.Logger {
	return slog.New(NewSlogHandler(l))
}

func levelFromSlog(level slog.Level) LogLevel {
	switch {
	case level >= slog.LevelError:
		return ERROR
	case level >= slog.LevelWarn:
		return WARN
	case level >= slog.LevelInfo:
		return INFO
	default:
		return DEBUG
	}
}

// Enabled reports whether the logger's level admits level.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := h.logger.Level()
	return threshold != DISABLED && levelFromSlog(level) >= threshold
}

// Handle writes the record with its attributes as fields.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		h.addAttr(fields, h.group, a)
		return true
	})

	caller := "unknown"
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		caller = fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
	}

	h.logger.write(levelFromSlog(r.Level), r.Message, caller, r.Time, fields)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &SlogHandler{
		logger: h.logger,
		attrs:  make(map[string]interface{}, len(h.attrs)+len(attrs)),
		group:  h.group,
	}
	for k, v := range h.attrs {
		next.attrs[k] = v
	}
	for _, a := range attrs {
		h.addAttr(next.attrs, h.group, a)
	}
	return next
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{
		logger: h.logger,
		attrs:  h.attrs,
		group:  joinKey(h.group, name),
	}
}

func (h *SlogHandler) addAttr(fields map[string]interface{}, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.addAttr(fields, joinKey(prefix, a.Key), ga)
		}
		return
	}
	fields[joinKey(prefix, a.Key)] = a.Value.Any()
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return strings.Join([]string{prefix, key}, ".")
}
