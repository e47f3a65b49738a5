package apperrors

import (
	"errors"
	"fmt"
)

// AppError carries an HTTP-ish status code alongside the message and cause.
// The repository layer uses it to classify infrastructure failures without
// leaking driver errors to callers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Code {
	case 404:
		return ErrNotFound
	case 400:
		return ErrValidation
	case 409:
		return ErrDuplicate
	}
	return nil
}

// NewAppError creates a generic AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message}
}

// NewValidationError creates an AppError that unwraps to ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message}
}

// IsNotFound reports whether err is or wraps a not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
