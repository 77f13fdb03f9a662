package camera

import (
	"errors"
	"fmt"
	"os"
)

// ErrorKind classifies camera acquisition failures.
type ErrorKind int

// Camera failure kinds.
const (
	NotSupported ErrorKind = iota + 1
	PermissionDenied
	NoSignal
	Timeout
	DeviceUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case NotSupported:
		return "camera not supported"
	case PermissionDenied:
		return "camera permission denied"
	case NoSignal:
		return "no camera signal"
	case Timeout:
		return "camera metadata timeout"
	case DeviceUnavailable:
		return "camera unavailable"
	default:
		return "camera error"
	}
}

// Error is a typed camera failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Sentinels for errors.Is.
var (
	ErrNotSupported      = &Error{Kind: NotSupported}
	ErrPermissionDenied  = &Error{Kind: PermissionDenied}
	ErrNoSignal          = &Error{Kind: NoSignal}
	ErrTimeout           = &Error{Kind: Timeout}
	ErrDeviceUnavailable = &Error{Kind: DeviceUnavailable}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
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

func classify(err error) *Error {
	var camErr *Error
	switch {
	case errors.As(err, &camErr):
		return camErr
	case errors.Is(err, os.ErrPermission):
		return &Error{Kind: PermissionDenied, Err: err}
	default:
		return &Error{Kind: DeviceUnavailable, Err: err}
	}
}
