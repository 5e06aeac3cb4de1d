package engine

import "errors"

// Code classifies engine errors; the set is exhaustive for this core
type Code string

const (
	CodeNotInitialized      Code = "NOT_INITIALIZED"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeResourceUnavailable Code = "RESOURCE_UNAVAILABLE"
	CodeProcessingFailed    Code = "PROCESSING_FAILED"
)

// Error is the only error type crossing the engine's public boundary.
// Library-level failures are translated and carried as the cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// newError creates an engine error with an optional cause
func newError(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode extracts the engine error code, or "" for foreign errors
func ErrorCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotInitialized reports whether err is a NOT_INITIALIZED engine error
func IsNotInitialized(err error) bool {
	return ErrorCode(err) == CodeNotInitialized
}

// IsInvalidInput reports whether err is an INVALID_INPUT engine error
func IsInvalidInput(err error) bool {
	return ErrorCode(err) == CodeInvalidInput
}

// IsResourceUnavailable reports whether err is a RESOURCE_UNAVAILABLE engine error
func IsResourceUnavailable(err error) bool {
	return ErrorCode(err) == CodeResourceUnavailable
}

// IsProcessingFailed reports whether err is a PROCESSING_FAILED engine error
func IsProcessingFailed(err error) bool {
	return ErrorCode(err) == CodeProcessingFailed
}
