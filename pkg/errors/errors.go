// Package errors provides standardized error types for the encore toolkit.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the failure taxonomy.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeNotFound         = "NOT_FOUND"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeConnectionFailed = "CONNECTION_FAILED"
	CodeTraceParse       = "TRACE_PARSE"
	CodeExportFailed     = "EXPORT_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeCanceled         = "CANCELED"
)

// Error represents a typed encore error with code, message, and optional details.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrQueryNotFound    = &Error{Code: CodeNotFound, Message: "query not found in catalog"}
	ErrVariantNotFound  = &Error{Code: CodeNotFound, Message: "query variant not found in catalog"}
	ErrConnectionFailed = &Error{Code: CodeConnectionFailed, Message: "database connection failed"}
	ErrTraceUnavailable = &Error{Code: CodeTraceParse, Message: "optimizer trace unavailable"}
	ErrInvalidParameter = &Error{Code: CodeInvalidParameter, Message: "invalid parameter value"}
)

// New creates a new Error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an Error.
func Wrap(err error, code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Code == CodeNotFound
	}
	return false
}

// IsConnectionFailed checks if an error is a connection error.
func IsConnectionFailed(err error) bool {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Code == CodeConnectionFailed
	}
	return false
}

// IsInvalidParameter checks if an error is a parameter validation error.
func IsInvalidParameter(err error) bool {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Code == CodeInvalidParameter
	}
	return false
}

// IsTraceParse checks if an error is a trace parsing error.
func IsTraceParse(err error) bool {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Code == CodeTraceParse
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Code
	}
	return CodeInternal
}

// GetMessage extracts the error message from an error.
func GetMessage(err error) string {
	var encErr *Error
	if errors.As(err, &encErr) {
		return encErr.Message
	}
	return err.Error()
}
