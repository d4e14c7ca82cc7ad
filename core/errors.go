package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type forbidden struct {
	message string
}

// NewForbiddenError indicates the caller is not allowed to perform the
// attempted operation on the target object.
func NewForbiddenError(msg string) error {
	return &forbidden{message: msg}
}

func (f forbidden) Error() string {
	return f.message
}

func IsForbidden(err error) bool {
	_, ok := errors.Cause(err).(*forbidden)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
