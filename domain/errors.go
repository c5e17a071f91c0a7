package domain

import (
	"errors"
	"strings"
)

var (
	errTaskNotFound       error = errors.New("task not found")
	errOwnerNotFound      error = errors.New("owner not found")
	errUserNotFound       error = errors.New("user not found")
	errUserAlreadyExists  error = errors.New("user already exists")
	errInvalidCredentials error = errors.New("invalid credentials")
	errInvalidToken       error = errors.New("token is not valid")
	errMissingToken       error = errors.New("no token, authorization denied")
	errTasksMustBeArray   error = errors.New("tasks must be an array")
	errInvalidRequestBody error = errors.New("invalid request body")
)

func ErrTaskNotFound() error {
	return errTaskNotFound
}

// ErrOwnerNotFound is returned when an operation that needs an authenticated
// owner is called without one.
func ErrOwnerNotFound() error {
	return errOwnerNotFound
}

func ErrUserNotFound() error {
	return errUserNotFound
}

func ErrUserAlreadyExists() error {
	return errUserAlreadyExists
}

func ErrInvalidCredentials() error {
	return errInvalidCredentials
}

func ErrInvalidToken() error {
	return errInvalidToken
}

func ErrMissingToken() error {
	return errMissingToken
}

func ErrTasksMustBeArray() error {
	return errTasksMustBeArray
}

func ErrInvalidRequestBody() error {
	return errInvalidRequestBody
}

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError collects field level problems with a request.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Msg: msg})
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Err returns nil when nothing was collected, so callers can
// `return v.Err()` unconditionally.
func (e *ValidationError) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
