// Package errors defines the typed failure taxonomy for movers.
// HTTP status mapping lives in internal/api; nothing here knows about HTTP.
package errors

import "fmt"

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidInput indicates a missing or malformed request input
	InvalidInput ErrorCode = "INVALID_INPUT"
	// ConfigMissing indicates required connection settings are absent
	ConfigMissing ErrorCode = "CONFIG_MISSING"
	// UpstreamFailed indicates a non-success status or unparseable body from the tracker
	UpstreamFailed ErrorCode = "UPSTREAM_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is a movers error with a stable code and optional cause.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidation creates an InvalidInput error.
func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Code: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewConfiguration creates a ConfigMissing error.
func NewConfiguration(format string, args ...interface{}) *Error {
	return &Error{Code: ConfigMissing, Message: fmt.Sprintf(format, args...)}
}

// NewUpstream creates an UpstreamFailed error wrapping cause.
func NewUpstream(cause error, format string, args ...interface{}) *Error {
	return &Error{Code: UpstreamFailed, Message: fmt.Sprintf(format, args...), cause: cause}
}

// NewInternal creates an InternalError wrapping cause.
func NewInternal(cause error, format string, args ...interface{}) *Error {
	return &Error{Code: InternalError, Message: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf extracts the error code from err, defaulting to InternalError.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return InternalError
}
