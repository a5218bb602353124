package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Protocol errors
const (
	// ErrCodeParse indicates the request body is not a valid XML-RPC call.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeMethodNotFound indicates the called method is not registered.
	ErrCodeMethodNotFound ErrorCode = "METHOD_NOT_FOUND"
	// ErrCodeInvalidParams indicates the call parameters do not fit the method.
	ErrCodeInvalidParams ErrorCode = "INVALID_PARAMS"
)

// Availability errors (retryable)
const (
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Input errors
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Authentication errors
const (
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Fault codes from the XML-RPC interoperability conventions.
const (
	FaultParse          = -32700
	FaultMethodNotFound = -32601
	FaultInvalidParams  = -32602
	FaultInternal       = -32603
	FaultApplication    = -32500
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
}

var faultCodes = map[ErrorCode]int{
	ErrCodeParse:          FaultParse,
	ErrCodeMethodNotFound: FaultMethodNotFound,
	ErrCodeInvalidParams:  FaultInvalidParams,
	ErrCodeInvalidInput:   FaultInvalidParams,
	ErrCodeInternal:       FaultInternal,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
