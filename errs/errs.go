// Package errs defines the typed error kinds the player, demuxer and
// audio worker surface through getError(): codec EAGAIN/EOF are
// ordinary control flow and never wrapped here.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a player-facing error.
type Kind int

const (
	// FormatError covers open/probe failure or no playable track.
	FormatError Kind = iota
	// DecodeError covers a rejected block or a non-EAGAIN/EOF codec error.
	DecodeError
	// ResampleError covers a software-resample failure.
	ResampleError
	// OutOfMemory covers an allocation failure in the decode path.
	OutOfMemory
	// DeviceError covers an audio output device that could not start.
	DeviceError
	// Timeout covers a packet fetch that did not complete in time.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case FormatError:
		return "FormatError"
	case DecodeError:
		return "DecodeError"
	case ResampleError:
		return "ResampleError"
	case OutOfMemory:
		return "OutOfMemory"
	case DeviceError:
		return "DeviceError"
	case Timeout:
		return "Timeout"
	default:
		return "UnknownError"
	}
}

// Error wraps an underlying cause with a Kind, so callers can
// errors.As to it and host code can errors.Is against a Kind-typed
// sentinel pattern via Is.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New returns an Error of kind with message, with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error of kind with message, wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether err is an *Error of the given kind, unwrapping
// through any wrapped causes via errors.As.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// FormatHint appends the "may not be a Hap movie" annotation
// FormatError gets when surfaced to the player's getError().
func (e *Error) FormatHint() string {
	if e.Kind != FormatError {
		return e.Error()
	}
	return e.Error() + " (may not be a Hap movie)"
}
