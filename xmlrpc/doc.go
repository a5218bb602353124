// Package xmlrpc is an XML-RPC client over HTTP(S).
//
// A Client is built from a URI string, an Options value, or a map with the
// same keys. The secure flag, not the URI scheme, decides between plain HTTP
// and TLS:
//
//	c, err := xmlrpc.New("http://example.com:8080/RPC2", true) // speaks HTTPS
//	sum, err := c.MethodCall(ctx, "sample.add", 2, 3)
//
// A call answered with 401 and a Digest challenge is retried once with the
// computed Authorization header when DigestAuth credentials are configured.
// A 404 ends the call with ErrNotFound. Transport failures are never
// retried.
//
// Calls do not share header state: each one works on a private copy of the
// connection descriptor, so a Client is safe for concurrent use.
package xmlrpc
