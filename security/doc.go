// Package security holds the TLS configuration shared by the XML-RPC client
// transport and the server.
//
//	cfg := security.TLSConfig{CAFile: "/etc/xmlrpc/ca.pem"}
//	tlsConfig, err := cfg.ClientConfig()
package security
