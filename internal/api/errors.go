package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies API call failures.
type ErrorKind int

// API failure kinds.
const (
	NetworkError ErrorKind = iota + 1
	ServerError
	InvalidFrame
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network error"
	case ServerError:
		return "server error"
	case InvalidFrame:
		return "invalid frame"
	default:
		return "api error"
	}
}

// Error is a typed failure of an API call.
type Error struct {
	Kind   ErrorKind
	Status int
	Err    error
}

// PredictionError is an alias of Error for prediction callers.
type PredictionError = Error

// Sentinels for errors.Is.
var (
	ErrNetwork      = &Error{Kind: NetworkError}
	ErrServer       = &Error{Kind: ServerError}
	ErrInvalidFrame = &Error{Kind: InvalidFrame}
)

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}
