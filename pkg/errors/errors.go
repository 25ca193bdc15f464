package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Pattern errors
	ErrGlobSyntax ErrorCode = "GLOB_SYNTAX"

	// File errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileRead   ErrorCode = "FILE_READ"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrEncoding   ErrorCode = "ENCODING"
)

// BasefmtError represents a structured error with code and details
type BasefmtError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BasefmtError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BasefmtError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BasefmtError) Is(target error) bool {
	var targetErr *BasefmtError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BasefmtError with the given code and message
func New(code ErrorCode, message string) *BasefmtError {
	return &BasefmtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BasefmtError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BasefmtError {
	return &BasefmtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BasefmtError
func Wrap(err error, code ErrorCode, message string) *BasefmtError {
	if err == nil {
		return nil
	}
	return &BasefmtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BasefmtError {
	if err == nil {
		return nil
	}
	return &BasefmtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BasefmtError) WithDetail(key string, value interface{}) *BasefmtError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bfErr *BasefmtError
	if errors.As(err, &bfErr) {
		return bfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BasefmtError
func GetErrorCode(err error) ErrorCode {
	var bfErr *BasefmtError
	if errors.As(err, &bfErr) {
		return bfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BasefmtError
func GetErrorDetails(err error) map[string]interface{} {
	var bfErr *BasefmtError
	if errors.As(err, &bfErr) {
		return bfErr.Details
	}
	return nil
}
