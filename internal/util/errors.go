// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Common application-specific errors.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input provided")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrDuplicateEntry = errors.New("duplicate entry") // Unique constraint violated in the store
	ErrUnprocessable  = errors.New("unprocessable entity")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrMissingFields  = errors.New("required fields missing")
)

// DetailedError pairs one of the sentinel errors above with a message meant for API clients.
type DetailedError struct {
	Kind   error
	Detail string
}

func (e *DetailedError) Error() string {
	return e.Detail
}

func (e *DetailedError) Unwrap() error {
	return e.Kind
}

// NewDetailedError builds a DetailedError of the given kind with a formatted client message.
func NewDetailedError(kind error, format string, args ...interface{}) error {
	return &DetailedError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// Detail returns the client message carried by err, or fallback when err has none.
func Detail(err error, fallback string) string {
	var de *DetailedError
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return fallback
}
