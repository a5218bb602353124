// Command xmlrpc calls XML-RPC methods on a remote server and serves a
// small demo method set.
//
//	xmlrpc call --url https://rpc.example.com/RPC2 --secure sample.add 2 3
//	xmlrpc serve --port 8080
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
