package xmlrpc

import (
	"errors"
	"net/http"
)

// Kind classifies client errors.
type Kind int

const (
	// KindConfiguration is bad constructor input.
	KindConfiguration Kind = iota + 1
	// KindTransport is a connection, DNS, TLS or read failure.
	KindTransport
	// KindNotFound is an HTTP 404, on the first attempt or after a retry.
	KindNotFound
	// KindAuthChallenge is a 401 that could not be answered.
	KindAuthChallenge
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindNotFound:
		return "not_found"
	case KindAuthChallenge:
		return "auth_challenge"
	default:
		return "unknown"
	}
}

// Error is returned for every failure the client itself detects. Faults
// reported by the server are returned as *codec.Fault instead.
type Error struct {
	Kind    Kind
	Message string
	// StatusCode is the HTTP status that ended the call, if any.
	StatusCode int
	Err        error
}

// ErrNotFound matches any KindNotFound error with errors.Is.
var ErrNotFound = &Error{Kind: KindNotFound, Message: "Not Found", StatusCode: http.StatusNotFound}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func configurationError(msg string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Err: err}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "transport error", Err: err}
}

func notFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Not Found", StatusCode: http.StatusNotFound}
}

func authChallengeError(err error) *Error {
	return &Error{Kind: KindAuthChallenge, Message: "authentication challenge failed", StatusCode: http.StatusUnauthorized, Err: err}
}

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsConfiguration checks if err is a configuration error.
func IsConfiguration(err error) bool { return isKind(err, KindConfiguration) }

// IsTransport checks if err is a transport error.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsAuthChallenge checks if err is an authentication challenge error.
func IsAuthChallenge(err error) bool { return isKind(err, KindAuthChallenge) }
