package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldMethod    = "rpc_method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldAttempt   = "attempt"
	FieldState     = "state"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldRemote    = "remote_addr"
)

// Fields builds a field map from alternating key-value pairs.
//
//	log.Debug("sent", logger.Fields(logger.FieldMethod, "add", logger.FieldStatus, 200))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(method string, err error) map[string]any {
	return map[string]any{
		FieldMethod: method,
		FieldError:  err.Error(),
	}
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
