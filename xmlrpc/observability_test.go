package xmlrpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/observability"
)

func TestMethodCall_SpanAndMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.Header().Set("WWW-Authenticate", testChallenge)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		reply(t, w, 1)
	}))
	defer srv.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	c, err := New(Options{
		Host:       "127.0.0.1",
		Port:       portOf(t, srv),
		Path:       "/RPC2",
		DigestAuth: &Credentials{User: "bob", Pass: "secret"},
	}, false, WithLogger(logger.Nop()), WithTracerProvider(tp), WithMeterProvider(mp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.MethodCall(context.Background(), "sample.add", 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != observability.SpanClientCall {
		t.Errorf("got span %q", span.Name())
	}
	var events []string
	for _, e := range span.Events() {
		events = append(events, e.Name)
	}
	if want := []string{"sent", "challenged", "retried", "done"}; !slices.Equal(events, want) {
		t.Errorf("got events %v, want %v", events, want)
	}
	attrs := attribute.NewSet(span.Attributes()...)
	if v, _ := attrs.Value(observability.AttrRetried); !v.AsBool() {
		t.Error("expected retried attribute")
	}
	if v, _ := attrs.Value(observability.AttrHTTPStatus); v.AsInt64() != http.StatusOK {
		t.Errorf("got status attribute %v", v.AsInt64())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	found := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					found[m.Name] += dp.Value
				}
			}
		}
	}
	if found["xmlrpc.client.calls"] != 1 || found["xmlrpc.client.digest_retries"] != 1 {
		t.Errorf("got metrics %v", found)
	}
}

func TestMethodCall_FailedSpan(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c, err := New(Options{Host: "127.0.0.1", Port: portOf(t, srv)}, false,
		WithLogger(logger.Nop()), WithTracerProvider(tp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = c.MethodCall(context.Background(), "m")

	span := recorder.Ended()[0]
	if span.Status().Description != "Not Found" {
		t.Errorf("got status %+v", span.Status())
	}
	attrs := attribute.NewSet(span.Attributes()...)
	if v, _ := attrs.Value(observability.AttrOutcome); v.AsString() != observability.OutcomeNotFound {
		t.Errorf("got outcome %q", v.AsString())
	}
}

func portOf(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	o, err := ParseURI(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o.Port
}
