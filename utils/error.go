package utils

import "fmt"

// ErrorKind classifies operation failures for transport mapping.
type ErrorKind string

const (
	ErrorKindUnauthorized        ErrorKind = "UNAUTHORIZED"
	ErrorKindForbidden           ErrorKind = "FORBIDDEN"
	ErrorKindNotFound            ErrorKind = "NOT_FOUND"
	ErrorKindValidation          ErrorKind = "VALIDATION_ERROR"
	ErrorKindConflict            ErrorKind = "CONFLICT"
	ErrorKindUpstreamUnavailable ErrorKind = "UPSTREAM_UNAVAILABLE"
	ErrorKindInternal            ErrorKind = "INTERNAL"
)

// AppError carries a machine-readable kind plus a human-readable message.
// Field is set for validation errors (first violated field).
type AppError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches any error of the same kind, so sentinel comparisons like
// errors.Is(err, ErrorRecordNotFound) keep working across constructors.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func ErrorUnauthorized(message string) *AppError {
	return &AppError{Kind: ErrorKindUnauthorized, Message: message}
}

func ErrorForbidden(message string) *AppError {
	return &AppError{Kind: ErrorKindForbidden, Message: message}
}

func ErrorNotFound(message string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

func ErrorValidation(field string, message string) *AppError {
	return &AppError{Kind: ErrorKindValidation, Field: field, Message: message}
}

func ErrorConflict(message string) *AppError {
	return &AppError{Kind: ErrorKindConflict, Message: message}
}

func ErrorUpstreamUnavailable(message string) *AppError {
	return &AppError{Kind: ErrorKindUpstreamUnavailable, Message: message}
}

// ErrorRecordNotFound is returned for rows that are absent OR belong to a
// different tenant. The two cases are indistinguishable to callers.
var ErrorRecordNotFound = ErrorNotFound("record not found")

// KindOf returns the classification of err, defaulting to INTERNAL.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind
	}
	return ErrorKindInternal
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
