package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// ErrorCode classifies transport failures.
type ErrorCode int

const (
	// ErrCodeConnection covers refused connections, DNS failures and resets.
	ErrCodeConnection ErrorCode = iota
	// ErrCodeTimeout indicates the request or the dial timed out.
	ErrCodeTimeout
	// ErrCodeCanceled indicates the caller's context was canceled.
	ErrCodeCanceled
	// ErrCodeTLS indicates the TLS handshake or certificate check failed.
	ErrCodeTLS
	// ErrCodeRead indicates the response body could not be read in full.
	ErrCodeRead
	// ErrCodeRequest indicates the request could not be built.
	ErrCodeRequest
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConnection:
		return "connection"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeTLS:
		return "tls"
	case ErrCodeRead:
		return "read"
	case ErrCodeRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is a classified transport failure.
type Error struct {
	Code ErrorCode
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// classify maps an error from http.Client.Do onto an ErrorCode.
func classify(ctx context.Context, err error) *Error {
	var (
		netErr       net.Error
		verifyErr    *tls.CertificateVerificationError
		unknownCA    x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		recordHdrErr tls.RecordHeaderError
	)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return newError(ErrCodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return newError(ErrCodeTimeout, err)
	case errors.As(err, &verifyErr), errors.As(err, &unknownCA), errors.As(err, &hostnameErr), errors.As(err, &recordHdrErr):
		return newError(ErrCodeTLS, err)
	default:
		return newError(ErrCodeConnection, err)
	}
}

func is(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return is(err, ErrCodeConnection) }

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return is(err, ErrCodeTimeout) }

// IsCanceled checks if an error came from a canceled context.
func IsCanceled(err error) bool { return is(err, ErrCodeCanceled) }

// IsTLS checks if an error is a TLS failure.
func IsTLS(err error) bool { return is(err, ErrCodeTLS) }
