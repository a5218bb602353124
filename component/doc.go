// Package component defines the lifecycle interface shared by the XML-RPC
// client, its HTTP transport and the server, plus a Registry that starts and
// stops them in order.
package component
