package store

import (
	"errors"
	"fmt"
)

// Error is a persistence error with a stable message.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compares by message so wrapped copies still match their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Message == t.Message
	}
	return false
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound      = &Error{Message: "record not found"}
	ErrAlreadyExists = &Error{Message: "record already exists"}
	ErrInvalidInput  = &Error{Message: "invalid input"}
	ErrNotEmpty      = &Error{Message: "owner already holds data"}
)

// CheckKeys returns ErrInvalidInput unless both the owner and record id are set.
func CheckKeys(userID, id string) error {
	if userID == "" || id == "" {
		return ErrInvalidInput
	}
	return nil
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
