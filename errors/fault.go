package errors

import "github.com/kbukum/xmlrpc/codec"

// FaultCode returns the XML-RPC fault code for the error. Codes without a
// protocol-level meaning map to the application range.
func (e *AppError) FaultCode() int {
	if code, ok := faultCodes[e.Code]; ok {
		return code
	}
	return FaultApplication
}

// ToFault converts the error into the fault a server writes back.
func (e *AppError) ToFault() *codec.Fault {
	return &codec.Fault{Code: e.FaultCode(), Message: e.Message}
}
