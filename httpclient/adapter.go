package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
)

// Transport sends one request and returns the complete response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Adapter is a plaintext or TLS Transport over net/http.
type Adapter struct {
	httpClient *http.Client
	config     Config
	scheme     string
	stopped    atomic.Bool
}

var _ Transport = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithRoundTripper replaces the underlying round tripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(a *Adapter) { a.httpClient.Transport = rt }
}

// Select returns the TLS adapter when secure is true and the plaintext
// adapter otherwise.
func Select(secure bool, cfg Config, opts ...Option) (*Adapter, error) {
	if secure {
		return NewTLS(cfg, opts...)
	}
	return NewPlain(cfg, opts...)
}

// NewPlain creates an adapter that speaks plain HTTP.
func NewPlain(cfg Config, opts ...Option) (*Adapter, error) {
	return newAdapter("http", cfg, opts)
}

// NewTLS creates an adapter that speaks HTTPS using cfg.TLS.
func NewTLS(cfg Config, opts ...Option) (*Adapter, error) {
	return newAdapter("https", cfg, opts)
}

func newAdapter(scheme string, cfg Config, opts []Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if scheme == "https" {
		tlsCfg, err := cfg.TLS.ClientConfig()
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsCfg
	}

	a := &Adapter{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			// Redirect responses go back to the caller untouched.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config: cfg,
		scheme: scheme,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Secure reports whether the adapter speaks HTTPS.
func (a *Adapter) Secure() bool { return a.scheme == "https" }

// URL returns the absolute URL the adapter would use for host and path.
func (a *Adapter) URL(host, path string) string {
	u := url.URL{Scheme: a.scheme, Host: host}
	return u.String() + path
}

// Do sends req and reads the whole response body.
func (a *Adapter) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, a.URL(req.Host, req.Path), bytes.NewReader(req.Body))
	if err != nil {
		return nil, newError(ErrCodeRequest, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, classify(ctx, err)
		}
		return nil, newError(ErrCodeRead, fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Unwrap returns the underlying *http.Client.
func (a *Adapter) Unwrap() *http.Client {
	return a.httpClient
}
