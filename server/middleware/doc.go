// Package middleware holds the Gin middleware of the XML-RPC server.
package middleware
