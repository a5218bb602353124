// Package endpoint provides the operational HTTP endpoints of the server.
package endpoint
