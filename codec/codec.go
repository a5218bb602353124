package codec

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Codec turns method calls into request bodies and response bodies back into
// values or faults.
type Codec interface {
	EncodeCall(method string, params []any) ([]byte, error)
	// DecodeResponse returns the decoded value, or a *Fault when the server
	// answered with a fault.
	DecodeResponse(r io.Reader) (any, error)

	DecodeCall(r io.Reader) (string, []any, error)
	EncodeResponse(v any) ([]byte, error)
	EncodeFault(f *Fault) ([]byte, error)
}

var (
	// ErrMalformed is returned for documents that are not valid XML-RPC.
	ErrMalformed = errors.New("codec: malformed xml-rpc document")
	// ErrUnsupportedType is returned for Go values with no XML-RPC mapping.
	ErrUnsupportedType = errors.New("codec: unsupported type")
	// ErrEmptyMethod is returned when encoding a call without a method name.
	ErrEmptyMethod = errors.New("codec: empty method name")
)

// Fault is an application-level error reported by an XML-RPC server.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}

// XML is the XML-RPC codec.
type XML struct {
	encoding string
}

var _ Codec = (*XML)(nil)

// Option configures an XML codec.
type Option func(*XML)

// WithEncoding forces the text encoding used to read response and call
// documents, regardless of what their XML declaration says.
func WithEncoding(label string) Option {
	return func(x *XML) { x.encoding = label }
}

// NewXML creates an XML codec.
func NewXML(opts ...Option) *XML {
	x := &XML{}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Encoding returns the forced text encoding, or "" when the document
// declaration is honoured.
func (x *XML) Encoding() string { return x.encoding }

// KnownEncoding reports whether label names a text encoding the codec can read.
func KnownEncoding(label string) bool {
	enc, _ := charset.Lookup(label)
	return enc != nil
}
