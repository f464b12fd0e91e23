package errors

import (
	"errors"
	"fmt"
)

// TransportError represents a failure before any response reached the
// server: DNS, connection refused, timeout, cancelled context.
type TransportError struct {
	Op  string
	Err error
}

// NewTransportError creates a new transport error for the given operation.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: no response from server: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped transport error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError represents a non-success status returned by the server.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

// NewServerError creates a new server error for the given operation.
func NewServerError(op string, statusCode int, message string) *ServerError {
	return &ServerError{Op: op, StatusCode: statusCode, Message: message}
}

// Error implements the error interface
func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
}

// ValidationError represents a validation failure with field-level details.
// Validation errors are raised locally, before any network call.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServer reports whether err is (or wraps) a ServerError.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
