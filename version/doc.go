// Package version provides build version information embedding.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/xmlrpc/version.Version=1.0.0" ./cmd/xmlrpc
package version
