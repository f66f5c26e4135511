// Package errors provides structured error handling for colkit.
//
// Every failure surfaced by the column layer is an *Error carrying an
// ErrorType, so callers can branch on the category without string matching:
//
//	v, err := col.At(10)
//	if errors.IsType(err, errors.ErrorTypeIndexOutOfRange) {
//	    // handle
//	}
//
// Errors are never retried or downgraded inside the library; they surface to
// the caller as soon as they occur.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeIndexOutOfRange is returned when a position falls outside [-len, len)
	ErrorTypeIndexOutOfRange ErrorType = "index_out_of_range"
	// ErrorTypeShapeMismatch is returned when a boolean mask length differs from the column length
	ErrorTypeShapeMismatch ErrorType = "shape_mismatch"
	// ErrorTypeLengthMismatch is returned when zipped sequences have different lengths
	ErrorTypeLengthMismatch ErrorType = "length_mismatch"
	// ErrorTypeAmbiguousSampleSize is returned when both n and frac are given to a sample
	ErrorTypeAmbiguousSampleSize ErrorType = "ambiguous_sample_size"
	// ErrorTypeInvalidSample is returned for sample sizes or weights that cannot be drawn
	ErrorTypeInvalidSample ErrorType = "invalid_sample"
	// ErrorTypeInvalidFunctionOutput is returned when a filter function is not boolean valued
	ErrorTypeInvalidFunctionOutput ErrorType = "invalid_function_output"
	// ErrorTypeAmbiguousFunctionShape is returned when row and batch trials cannot be told apart
	ErrorTypeAmbiguousFunctionShape ErrorType = "ambiguous_function_shape"
	// ErrorTypeHeterogeneousBatch is returned when cells cannot be folded into one representation
	ErrorTypeHeterogeneousBatch ErrorType = "heterogeneous_batch"
	// ErrorTypeUnsupportedDataType is returned when data cannot back a column
	ErrorTypeUnsupportedDataType ErrorType = "unsupported_data_type"
	// ErrorTypeNotSupported is returned by operations a backend does not implement
	ErrorTypeNotSupported ErrorType = "not_supported"
	// ErrorTypeInvalidIndex is returned for index expressions that cannot be translated
	ErrorTypeInvalidIndex ErrorType = "invalid_index"
	// ErrorTypeInvalidFunction is returned when a mapped value is not a usable function
	ErrorTypeInvalidFunction ErrorType = "invalid_function"
	// ErrorTypeProvenance is returned when a lineage edge cannot be recorded
	ErrorTypeProvenance ErrorType = "provenance"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error, or any error it wraps, is of the given type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// As is a passthrough to the standard library so callers need one import
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
