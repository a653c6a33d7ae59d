// Package olerr defines the error-kind taxonomy shared by every OpenLink
// component: the auth service, the session engine, the station registry
// and the relay server all return errors tagged with one of these kinds so
// callers can map them to HTTP status codes or a log-and-continue policy
// without inspecting error strings.
package olerr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// KindUnknown is the zero value; Of(err) returns it for errors that
	// were never tagged by this package.
	KindUnknown Kind = iota
	KindConfiguration
	KindAuthentication
	KindTransport
	KindSerialization
	KindProtocol
	KindStateConflict
	KindNotFound
	KindPolicy
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindTransport:
		return "transport"
	case KindSerialization:
		return "serialization"
	case KindProtocol:
		return "protocol"
	case KindStateConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	case KindPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with an underlying cause. It is never constructed
// directly by callers outside this package; use the per-kind constructors
// (Configuration, Authentication, Transport, ...).
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

func newError(k Kind, msg string, err error) *Error {
	return &Error{kind: k, msg: msg, err: err}
}

func Configuration(msg string, err error) error { return newError(KindConfiguration, msg, err) }
func Authentication(msg string, err error) error { return newError(KindAuthentication, msg, err) }
func Transport(msg string, err error) error      { return newError(KindTransport, msg, err) }
func Serialization(msg string, err error) error  { return newError(KindSerialization, msg, err) }
func Protocol(msg string, err error) error       { return newError(KindProtocol, msg, err) }
func StateConflict(msg string, err error) error  { return newError(KindStateConflict, msg, err) }
func NotFound(msg string, err error) error       { return newError(KindNotFound, msg, err) }
func Policy(msg string, err error) error         { return newError(KindPolicy, msg, err) }

// Of extracts the Kind carried by err, walking the unwrap chain. Errors not
// produced by this package report KindUnknown.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
