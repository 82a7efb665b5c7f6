// Package apperror defines the error kinds shared by the store, services and controllers.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrSelfReference = errors.New("self reference rejected")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation error")
)

// AppError carries a human-readable message on top of one of the sentinel kinds.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func Duplicate(field, value string) *AppError {
	return &AppError{
		Err:     ErrDuplicateKey,
		Message: fmt.Sprintf("%s %q already exists", field, value),
	}
}

func SelfReference(message string) *AppError {
	return &AppError{
		Err:     ErrSelfReference,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden is returned when the caller is authenticated but lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}

// MessageOf returns the AppError message in err's chain, or fallback.
func MessageOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
