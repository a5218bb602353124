package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Call outcomes used as the "outcome" metric attribute.
const (
	OutcomeSuccess   = "success"
	OutcomeFault     = "fault"
	OutcomeNotFound  = "not_found"
	OutcomeTransport = "transport_error"
	OutcomeAuth      = "auth_error"
	OutcomeError     = "error"
)

// Metric sides.
const (
	SideClient = "client"
	SideServer = "server"
)

// MeterConfig configures the OTLP metric exporter.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName: serviceName,
		Environment: "development",
		Endpoint:    "localhost:4318",
		Insecure:    true,
		Interval:    15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// Shut the returned provider down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// RPCMetrics holds the call instruments for one side of the protocol.
type RPCMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	retries  metric.Int64Counter
}

// NewRPCMetrics creates xmlrpc.<side>.calls, xmlrpc.<side>.duration and
// xmlrpc.<side>.digest_retries on meter.
func NewRPCMetrics(meter metric.Meter, side string) (*RPCMetrics, error) {
	prefix := "xmlrpc." + side + "."

	calls, err := meter.Int64Counter(prefix+"calls",
		metric.WithDescription("Completed XML-RPC calls by method and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %scalls counter: %w", prefix, err)
	}
	duration, err := meter.Float64Histogram(prefix+"duration",
		metric.WithDescription("Duration of XML-RPC calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %sduration histogram: %w", prefix, err)
	}
	retries, err := meter.Int64Counter(prefix+"digest_retries",
		metric.WithDescription("Calls resent after a digest challenge"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %sdigest_retries counter: %w", prefix, err)
	}
	return &RPCMetrics{calls: calls, duration: duration, retries: retries}, nil
}

// RecordCall records one finished call.
func (m *RPCMetrics) RecordCall(ctx context.Context, method, outcome string, retried bool, d time.Duration) {
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrRPCMethod, method),
		attribute.String(AttrOutcome, outcome),
		attribute.Bool(AttrRetried, retried),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrRPCMethod, method),
	))
}

// RecordRetry records one digest retry.
func (m *RPCMetrics) RecordRetry(ctx context.Context, method string) {
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrRPCMethod, method)))
}
