package httpclient

import "net/http"

// Request is one outbound HTTP request.
type Request struct {
	// Method is the HTTP method.
	Method string
	// Host is "host:port".
	Host string
	// Path is the request path, query included.
	Path string
	// Header is sent as-is.
	Header http.Header
	// Body is the full request body.
	Body []byte
}

// Response is the result of a request.
type Response struct {
	StatusCode int
	Header     http.Header
	// Body is the fully read response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
