package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error produced by this package matches exactly one of them with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrDependencyFailure = errors.New("dependency failure")
)

const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error

	kind error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error's kind, so callers can test errors.Is(err, ErrForbidden)
// while the wrapped collaborator error stays reachable through Unwrap.
func (e *Error) Is(target error) bool {
	return e.kind != nil && e.kind == target
}

func newKind(kind error, code, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err, kind: kind}
}

func Unauthorized(message string) error {
	return newKind(ErrUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(message string) error {
	return newKind(ErrForbidden, CodeForbidden, message, nil)
}

func InvalidInput(message string) error {
	return newKind(ErrInvalidInput, CodeInvalidInput, message, nil)
}

func NotFound(message string) error {
	return newKind(ErrNotFound, CodeNotFound, message, nil)
}

// Dependency wraps a failed persistence or blob call.
func Dependency(err error, message string) error {
	if err == nil {
		return nil
	}
	return newKind(ErrDependencyFailure, CodeDependencyFailure, message, err)
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message, keeping the kind of the wrapped error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetCode(err),
		Message: message,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDependencyFailure(err error) bool {
	return errors.Is(err, ErrDependencyFailure)
}
