package service

import (
	"context"
	"errors"
	"strings"
)

// FailureKind classifies why a remote operation did not succeed.
type FailureKind int

const (
	// KindServer means the server answered with an explicit error message.
	KindServer FailureKind = iota + 1
	// KindHTTP means a non-2xx response without a usable message.
	KindHTTP
	// KindUnauthorized means the token or credentials were rejected.
	KindUnauthorized
	KindNetwork
	KindDecode
	KindCanceled
	// KindInvalid means the request was refused locally before being sent.
	KindInvalid
	// KindStorage means local session storage could not be written.
	KindStorage
)

func (k FailureKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindHTTP:
		return "http"
	case KindUnauthorized:
		return "unauthorized"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	case KindInvalid:
		return "invalid"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Failure is the error half of Result. Message holds the server supplied
// text; it is empty when the server gave none.
type Failure struct {
	Kind       FailureKind
	Message    string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Kind.String() + " failure"
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// MessageOr returns the server message when there is one and the fallback
// otherwise.
func (f *Failure) MessageOr(fallback string) string {
	if f == nil {
		return fallback
	}
	if msg := strings.TrimSpace(f.Message); msg != "" {
		return msg
	}
	return fallback
}

// Invalid builds a failure for a request that was refused before sending.
// The message is surfaced as is.
func Invalid(err error) *Failure {
	return &Failure{Kind: KindInvalid, Message: err.Error(), Err: err}
}

// Classify turns an error returned by the client into a Failure.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		f := &Failure{Kind: KindHTTP, Message: apiErr.Message, StatusCode: apiErr.StatusCode, Err: err}
		switch {
		case IsUnauthorized(apiErr):
			f.Kind = KindUnauthorized
		case apiErr.Message != "":
			f.Kind = KindServer
		}
		return f
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return &Failure{Kind: KindDecode, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: KindCanceled, Err: err}
	}
	return &Failure{Kind: KindNetwork, Err: err}
}

// Result is either a value (Err == nil) or a Failure.
type Result[T any] struct {
	Value T
	Err   *Failure
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func Err[T any](failure *Failure) Result[T] {
	return Result[T]{Err: failure}
}

// Capture converts a (value, error) pair into a Result.
func Capture[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](Classify(err))
	}
	return Ok(value)
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}
