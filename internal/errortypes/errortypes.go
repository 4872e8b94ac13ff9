// Package errortypes provides error types and handling for distill.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType string

// Error types
const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeSegmentation ErrorType = "segmentation"
	ErrorTypeGeneration   ErrorType = "generation"
	ErrorTypeBatchAbort   ErrorType = "batch_abort"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// Components that raise errors. They name the pipeline stage that failed.
const (
	ComponentNormalizer = "normalizer"
	ComponentSegmenter  = "segmenter"
	ComponentScorer     = "scorer"
	ComponentSelector   = "selector"
	ComponentEngine     = "engine"
	ComponentComposer   = "composer"
	ComponentPipeline   = "pipeline"
	ComponentConfig     = "config"
	ComponentToolServer = "tool_server"
)

// AppError represents an application error with context
type AppError struct {
	Err       error
	Type      ErrorType
	Component string
	Message   string
	StackInfo string
	Fields    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

// Unwrap unwraps the error to support errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField adds a field to the error for additional context
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error for additional context
func (e *AppError) WithFields(fields map[string]interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// WithComponent records the component that raised the error.
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// captureStack captures the stack trace at the call site
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		// Skip testing and standard library frames
		if !strings.Contains(frame.File, "testing/") && !strings.Contains(frame.File, "/go/src/") {
			fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return builder.String()
}

// newAppError creates a new AppError with the given type, underlying error, and message
func newAppError(errType ErrorType, component string, err error, message string) *AppError {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &AppError{
		Err:       err,
		Type:      errType,
		Component: component,
		Message:   message,
		StackInfo: captureStack(),
		Fields:    make(map[string]interface{}),
	}
}

// ValidationError creates a new validation error. Validation errors are
// raised before any pipeline work starts and are never retried.
func ValidationError(err error, message string) *AppError {
	return newAppError(ErrorTypeValidation, ComponentPipeline, err, message)
}

// SegmentationError creates a new sentence segmentation error
func SegmentationError(err error, message string) *AppError {
	return newAppError(ErrorTypeSegmentation, ComponentSegmenter, err, message)
}

// GenerationError creates a new error for a failed generation engine call.
// The provider name is kept both as a field and in the message.
func GenerationError(provider string, err error) *AppError {
	return newAppError(ErrorTypeGeneration, ComponentEngine, err, "generation failed for engine "+provider).
		WithField("provider", provider)
}

// BatchAbortError creates a new error for a batch that was aborted because
// the document at index failed.
func BatchAbortError(index int, err error) *AppError {
	return newAppError(ErrorTypeBatchAbort, ComponentPipeline, err, fmt.Sprintf("batch aborted at document %d", index+1)).
		WithField("document_index", index)
}

// NetworkError creates a new network error
func NetworkError(err error, message string) *AppError {
	return newAppError(ErrorTypeNetwork, ComponentEngine, err, message)
}

// ConfigError creates a new configuration error
func ConfigError(err error, message string) *AppError {
	return newAppError(ErrorTypeConfig, ComponentConfig, err, message)
}

// InternalError creates a new internal error
func InternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeInternal, ComponentPipeline, err, message)
}

// ExternalError creates a new external error
func ExternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeExternal, ComponentEngine, err, message)
}

// LogError logs an AppError using the provided slog.Logger or the default slog logger.
// It logs the error message, type, component, stack trace, and any associated fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		// Prepare arguments for structured logging
		args := []any{
			"type", string(appErr.Type),
			"component", appErr.Component,
			"original_error", appErr.Err.Error(),
		}
		if appErr.StackInfo != "" {
			args = append(args, "stack", appErr.StackInfo)
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		logger.Error(appErr.Message, args...)
	} else {
		// For generic errors, log the error message and the error itself
		logger.Error(err.Error(), "error", err)
	}
}

// TypeOf returns the type of the outermost AppError in err's chain, or an
// empty ErrorType when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// hasType reports whether any AppError in err's chain has the given type.
// A batch abort wrapping a validation error is both.
func hasType(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Err
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsSegmentationError checks if an error is a segmentation error
func IsSegmentationError(err error) bool {
	return hasType(err, ErrorTypeSegmentation)
}

// IsGenerationError checks if an error is a generation error
func IsGenerationError(err error) bool {
	return hasType(err, ErrorTypeGeneration)
}

// IsBatchAbortError checks if an error is a batch abort error
func IsBatchAbortError(err error) bool {
	return hasType(err, ErrorTypeBatchAbort)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsNetworkError checks if an error is a network error
func IsNetworkError(err error) bool {
	return hasType(err, ErrorTypeNetwork)
}
