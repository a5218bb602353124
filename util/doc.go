// Package util holds small parsing and masking helpers shared by the server
// and the CLI.
package util
