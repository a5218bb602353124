// Package server is an XML-RPC server on Gin.
//
// Methods are registered by name and receive the decoded parameters:
//
//	srv := server.New(cfg, log)
//	srv.Register("sample.add", func(ctx context.Context, params []any) (any, error) {
//	    return params[0].(int) + params[1].(int), nil
//	})
//	err := srv.Start(ctx)
//
// Errors returned by a method are written as XML-RPC faults: a *codec.Fault
// is sent as-is, an *errors.AppError is mapped with ToFault, and anything
// else becomes an internal error fault. system.listMethods is always
// registered.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: turns panics into internal error faults
//   - RequestID: request ID generation and propagation
//   - RequestLogger: request logging with duration tracking
//   - BodySizeLimit: request body size limits
//   - BasicAuth / DigestAuth: HTTP authentication on the RPC path
//
// # Endpoints
//
//   - /health: component health aggregation
//   - /version: build version information
package server
