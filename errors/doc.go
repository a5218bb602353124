// Package errors provides the structured application error used by the
// XML-RPC server side. AppError carries a machine-readable code, an HTTP
// status, retryable detection and details, and maps onto an XML-RPC fault.
package errors
