// Package logger provides structured logging on top of zerolog.
//
// Loggers are created from a Config, tagged per component, and enriched from
// a context (otel trace ids and the request id set by the server middleware).
//
//	log := logger.Get("xmlrpc.client")
//	log.Debug("call sent", logger.Fields(logger.FieldMethod, "add"))
package logger
