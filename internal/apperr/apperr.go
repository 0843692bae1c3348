// Package apperr defines the error kinds every externally facing operation
// reports. Lower layers wrap freely; transports only look at the kind.
package apperr

import (
	"errors"
	"time"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	Unauthorized
	Forbidden
	InvalidArgument
	Conflict
	RateLimited
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case InvalidArgument:
		return "invalid_argument"
	case Conflict:
		return "conflict"
	case RateLimited:
		return "rate_limited"
	case Unavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a classified error with a message safe to show to callers.
type Error struct {
	Kind Kind
	Msg  string
	// RetryAfter is set on RateLimited errors.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return e.Msg
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Limited returns a RateLimited error telling the caller when to retry.
func Limited(retryAfter time.Duration) *Error {
	return &Error{Kind: RateLimited, Msg: "too many requests", RetryAfter: retryAfter}
}

// RetryAfter returns the retry hint carried by err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == RateLimited {
		return e.RetryAfter, true
	}
	return 0, false
}

// KindOf returns the kind of the outermost *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-safe message of err, or "internal error" for
// anything that was not classified.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Msg
	}
	return "internal error"
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
