// Package httpclient is the byte-level transport under the XML-RPC client.
//
// Select picks a plaintext or TLS adapter from a boolean. The adapter sends
// one request and returns the status, headers and fully read body. It adds
// no protocol logic, never retries and never follows redirects.
//
//	t, err := httpclient.Select(secure, httpclient.Config{Timeout: 10 * time.Second})
//	resp, err := t.Do(ctx, &httpclient.Request{
//	    Method: http.MethodPost,
//	    Host:   "localhost:9090",
//	    Path:   "/RPC2",
//	    Header: header,
//	    Body:   body,
//	})
package httpclient
