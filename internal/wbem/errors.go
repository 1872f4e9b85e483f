package wbem

import (
	"errors"
	"fmt"
)

// ServiceError represents a failure reported by the instrumentation
// provider. The engine surfaces these verbatim - no retries, no
// translation - so callers can tell which collaborator call failed.
type ServiceError struct {
	// Code identifies which collaborator operation failed.
	Code ServiceErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ServiceErrorCode categorizes provider failures.
type ServiceErrorCode string

const (
	// ErrCodeConnectionFailed indicates session establishment failed.
	ErrCodeConnectionFailed ServiceErrorCode = "CONNECTION_FAILED"

	// ErrCodeQueryFailed indicates the provider rejected the query.
	ErrCodeQueryFailed ServiceErrorCode = "QUERY_FAILED"

	// ErrCodeCursorFailed indicates result iteration failed mid-flight.
	ErrCodeCursorFailed ServiceErrorCode = "CURSOR_FAILED"

	// ErrCodePropertyFailed indicates fetching a property from a row
	// failed.
	ErrCodePropertyFailed ServiceErrorCode = "PROPERTY_FAILED"
)

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a ServiceError for a failed connect.
func NewConnectionError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeConnectionFailed, Message: message, Err: err}
}

// NewQueryError creates a ServiceError for a rejected query.
func NewQueryError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeQueryFailed, Message: message, Err: err}
}

// NewCursorError creates a ServiceError for a failed row fetch.
func NewCursorError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeCursorFailed, Message: message, Err: err}
}

// NewPropertyError creates a ServiceError for a failed property fetch.
func NewPropertyError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodePropertyFailed, Message: message, Err: err}
}

// IsServiceError returns the ServiceError inside err, if any.
// Uses errors.As to handle wrapped errors.
func IsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode returns true if err carries a ServiceError with the given code.
func HasCode(err error, code ServiceErrorCode) bool {
	se, ok := IsServiceError(err)
	return ok && se.Code == code
}
