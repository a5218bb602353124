package httpclient

import (
	"context"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/xmlrpc/component"
	"github.com/kbukum/xmlrpc/security"
)

func hostOf(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	return strings.TrimPrefix(strings.TrimPrefix(srv.URL, "http://"), "https://")
}

func TestSelect_Plain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		if r.URL.Path != "/RPC2" {
			t.Errorf("got path %s, want /RPC2", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "text/xml" {
			t.Errorf("got Content-Type %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "<methodCall/>" {
			t.Errorf("got body %q", body)
		}
		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("reply"))
	}))
	defer srv.Close()

	a, err := Select(false, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Secure() {
		t.Error("expected plaintext adapter")
	}

	header := http.Header{"Content-Type": {"text/xml"}}
	resp, err := a.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Host:   hostOf(t, srv),
		Path:   "/RPC2",
		Header: header,
		Body:   []byte("<methodCall/>"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("got status %d", resp.StatusCode)
	}
	if resp.IsSuccess() {
		t.Error("418 is not a success")
	}
	if string(resp.Body) != "reply" || resp.Header.Get("X-Reply") != "yes" {
		t.Errorf("got body %q header %v", resp.Body, resp.Header)
	}
	if len(header) != 1 {
		t.Error("request header map must not be modified")
	}
}

func TestSelect_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			t.Error("expected a TLS request")
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	a, err := Select(true, Config{TLS: &security.TLSConfig{RootCAs: pool}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Secure() {
		t.Error("expected TLS adapter")
	}
	resp, err := a.Do(context.Background(), &Request{Method: http.MethodPost, Host: hostOf(t, srv), Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("got body %q", resp.Body)
	}
}

func TestSelect_TLSUntrusted(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	a, err := Select(true, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = a.Do(context.Background(), &Request{Method: http.MethodPost, Host: hostOf(t, srv), Path: "/"})
	if !IsTLS(err) {
		t.Errorf("got %v, want TLS error", err)
	}
}

func TestSelect_PlainAgainstTLSServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	// The flag decides the scheme; a plaintext request to a TLS port gets
	// an HTTP 400 from the server rather than a handshake.
	a, _ := Select(false, Config{})
	resp, err := a.Do(context.Background(), &Request{Method: http.MethodPost, Host: hostOf(t, srv), Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", resp.StatusCode)
	}
}

func TestDo_RedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/elsewhere" {
			t.Error("redirect should not be followed")
		}
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	a, _ := NewPlain(Config{})
	resp, err := a.Do(context.Background(), &Request{Method: http.MethodPost, Host: hostOf(t, srv), Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("got status %d, want 302", resp.StatusCode)
	}
}

func TestDo_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	a, _ := NewPlain(Config{})
	_, err = a.Do(context.Background(), &Request{Method: http.MethodPost, Host: addr, Path: "/"})
	if !IsConnection(err) {
		t.Errorf("got %v, want connection error", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Code.String() != "connection" {
		t.Errorf("got %#v", err)
	}
}

func TestDo_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	a, _ := NewPlain(Config{})
	_, err := a.Do(ctx, &Request{Method: http.MethodPost, Host: hostOf(t, srv), Path: "/"})
	if !IsCanceled(err) {
		t.Errorf("got %v, want canceled error", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	a, _ := NewPlain(Config{Timeout: 30 * time.Millisecond})
	_, err := a.Do(context.Background(), &Request{Method: http.MethodPost, Host: hostOf(t, srv), Path: "/"})
	if !IsTimeout(err) {
		t.Errorf("got %v, want timeout error", err)
	}
}

type failingRoundTripper struct{ err error }

func (f failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func TestWithRoundTripper(t *testing.T) {
	boom := errors.New("stream reset")
	a, _ := NewPlain(Config{}, WithRoundTripper(failingRoundTripper{err: boom}))
	_, err := a.Do(context.Background(), &Request{Method: http.MethodPost, Host: "example.invalid", Path: "/"})
	if !IsConnection(err) || !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second || cfg.Name == "" {
		t.Errorf("got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.TLS = &security.TLSConfig{CertFile: "only-cert.pem"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected TLS validation error")
	}
	if _, err := NewTLS(Config{TLS: &security.TLSConfig{MinVersion: "9"}}); err == nil {
		t.Error("expected constructor to reject an invalid TLS config")
	}
}

func TestAdapter_Lifecycle(t *testing.T) {
	a, _ := NewPlain(Config{Name: "rpc"})
	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h := a.Health(ctx); h.Status != component.StatusHealthy || h.Name != "rpc" {
		t.Errorf("got %+v", h)
	}
	_ = a.Stop(ctx)
	if h := a.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("got %+v", h)
	}
	if d := a.Describe(); d.Type != "http-transport" || !strings.HasPrefix(d.Details, "http ") {
		t.Errorf("got %+v", d)
	}
}
