package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers never need to match on messages.
type ErrorKind string

const (
	KindUnauthenticated     ErrorKind = "UNAUTHENTICATED"
	KindValidation          ErrorKind = "VALIDATION_ERROR"
	KindConstraintViolation ErrorKind = "CONSTRAINT_VIOLATION"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindStoreUnavailable    ErrorKind = "STORE_UNAVAILABLE"
)

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
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
	return e.Err
}

// Is matches any *AppError of the same kind, so the sentinels below work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnauthenticated     = &AppError{Kind: KindUnauthenticated, Message: "not authenticated"}
	ErrValidation          = &AppError{Kind: KindValidation, Message: "invalid request"}
	ErrConstraintViolation = &AppError{Kind: KindConstraintViolation, Message: "vote already exists"}
	ErrNotFound            = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrStoreUnavailable    = &AppError{Kind: KindStoreUnavailable, Message: "store unavailable"}
)

func NewUnauthenticatedError() *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: "not authenticated"}
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConstraintViolation(err error) *AppError {
	return &AppError{Kind: KindConstraintViolation, Message: "vote already exists", Err: err}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

func NewStoreUnavailable(err error) *AppError {
	return &AppError{Kind: KindStoreUnavailable, Message: "store unavailable", Err: err}
}

// KindOf returns the kind of err, treating unclassified errors as store failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStoreUnavailable
}
