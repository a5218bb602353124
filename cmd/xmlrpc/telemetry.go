package main

import (
	"context"
	"errors"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/xmlrpc/component"
	"github.com/kbukum/xmlrpc/observability"
	"github.com/kbukum/xmlrpc/version"
)

// TelemetryConfig enables OTLP/HTTP export of spans and metrics. Export is
// off while Endpoint is empty.
type TelemetryConfig struct {
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in the local-development defaults.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = observability.DefaultTracerConfig("").SampleRate
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = observability.DefaultMeterConfig("").Interval
	}
}

// telemetry installs the global tracer and meter providers on Start and
// flushes them on Stop.
type telemetry struct {
	cfg         TelemetryConfig
	service     string
	environment string

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var _ component.Component = (*telemetry)(nil)

func newTelemetry(cfg TelemetryConfig, service, environment string) *telemetry {
	return &telemetry{cfg: cfg, service: service, environment: environment}
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	if t.cfg.Endpoint == "" {
		return nil
	}
	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    t.service,
		ServiceVersion: version.Version,
		Environment:    t.environment,
		Endpoint:       t.cfg.Endpoint,
		Insecure:       t.cfg.Insecure,
		SampleRate:     t.cfg.SampleRate,
	})
	if err != nil {
		return err
	}
	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    t.service,
		ServiceVersion: version.Version,
		Environment:    t.environment,
		Endpoint:       t.cfg.Endpoint,
		Insecure:       t.cfg.Insecure,
		Interval:       t.cfg.MetricInterval,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	t.tp, t.mp = tp, mp
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (t *telemetry) Health(context.Context) component.Health {
	h := component.Health{Name: t.Name(), Status: component.StatusHealthy}
	if t.cfg.Endpoint == "" {
		h.Message = "export disabled"
	}
	return h
}
