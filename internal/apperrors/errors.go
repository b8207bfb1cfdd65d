package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates unauthorized access
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// TypeOf reports the ErrorType of err, or ErrorTypeInternal when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Is reports whether err is an AppError of the given type.
func Is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
