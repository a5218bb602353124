package xmlrpc

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/httpclient"
	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/observability"
)

// Client calls methods on one XML-RPC endpoint. It is safe for concurrent
// use.
type Client struct {
	base      *target
	transport httpclient.Transport
	// adapter is the transport when the client selected it itself.
	adapter *httpclient.Adapter
	codec   codec.Codec
	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.RPCMetrics
}

type clientOptions struct {
	transport  httpclient.Transport
	httpConfig httpclient.Config
	codec      codec.Codec
	log        *logger.Logger
	tp         trace.TracerProvider
	mp         metric.MeterProvider
}

// Option configures a Client.
type Option func(*clientOptions)

// WithTransport replaces the transport chosen by the secure flag.
func WithTransport(t httpclient.Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithHTTPConfig configures the selected transport (timeout, TLS).
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(o *clientOptions) { o.httpConfig = cfg }
}

// WithCodec replaces the XML codec. ResponseEncoding is not applied to a
// codec passed this way.
func WithCodec(c codec.Codec) Option {
	return func(o *clientOptions) { o.codec = c }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithTracerProvider sets the tracer provider. Defaults to the otel global.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) { o.tp = tp }
}

// WithMeterProvider sets the meter provider. Defaults to the otel global.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *clientOptions) { o.mp = mp }
}

// New creates a client from a URI string, an Options or *Options value, or a
// map[string]any with the Options keys. secure selects HTTPS regardless of
// the URI scheme.
func New(target any, secure bool, opts ...Option) (*Client, error) {
	var o Options
	switch v := target.(type) {
	case string:
		parsed, err := ParseURI(v)
		if err != nil {
			return nil, err
		}
		o = parsed
	case Options:
		o = v
	case *Options:
		if v == nil {
			return nil, configurationError("nil options", nil)
		}
		o = *v
	case map[string]any:
		decoded, err := decodeOptions(v)
		if err != nil {
			return nil, err
		}
		o = decoded
	default:
		return nil, configurationError(fmt.Sprintf("unsupported target type %T", target), nil)
	}
	return newClient(o, secure, opts)
}

// NewFromURI creates a client for uri.
func NewFromURI(uri string, secure bool, opts ...Option) (*Client, error) {
	o, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return newClient(o, secure, opts)
}

// NewFromOptions creates a client from o.
func NewFromOptions(o Options, secure bool, opts ...Option) (*Client, error) {
	return newClient(o, secure, opts)
}

func newClient(o Options, secure bool, opts []Option) (*Client, error) {
	var co clientOptions
	for _, opt := range opts {
		opt(&co)
	}

	base, err := o.resolve(secure)
	if err != nil {
		return nil, err
	}

	c := &Client{base: base, transport: co.transport, codec: co.codec, log: co.log}
	if c.transport == nil {
		a, err := httpclient.Select(secure, co.httpConfig)
		if err != nil {
			return nil, configurationError("invalid transport config", err)
		}
		c.adapter, c.transport = a, a
	}
	if c.codec == nil {
		var copts []codec.Option
		if base.encoding != "" {
			copts = append(copts, codec.WithEncoding(base.encoding))
		}
		c.codec = codec.NewXML(copts...)
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger()
	}
	c.log = c.log.WithComponent("xmlrpc-client")

	tp := co.tp
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	c.tracer = tp.Tracer(observability.InstrumentationName)

	mp := co.mp
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	c.metrics, err = observability.NewRPCMetrics(mp.Meter(observability.InstrumentationName), observability.SideClient)
	if err != nil {
		return nil, configurationError("creating metrics", err)
	}
	return c, nil
}

// URL returns the endpoint URL.
func (c *Client) URL() string { return c.base.url() }

// Secure reports whether the client was built for HTTPS.
func (c *Client) Secure() bool { return c.base.secure }

// MethodCall calls method with params and returns the decoded result.
//
// The error is a *codec.Fault when the server answered with a fault, an
// *Error for not-found, transport and authentication failures, or a codec
// error for undecodable responses.
func (c *Client) MethodCall(ctx context.Context, method string, params ...any) (any, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, observability.SpanClientCall,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrRPCSystem, "xmlrpc"),
			attribute.String(observability.AttrRPCMethod, method),
		),
	)
	defer span.End()

	k := &call{
		client: c,
		method: method,
		params: slices.Clone(params),
		span:   span,
		log:    c.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldMethod, method, logger.FieldURL, c.base.url())),
	}
	result, err := k.run(ctx)

	outcome := outcomeOf(err)
	span.SetAttributes(
		attribute.Int(observability.AttrHTTPStatus, k.status),
		attribute.Bool(observability.AttrRetried, k.retried),
		attribute.String(observability.AttrOutcome, outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		k.log.WithError(err).Warn("call failed", logger.MergeWithDuration(logger.Fields(
			logger.FieldStatus, k.status,
		), time.Since(start)))
	}
	c.metrics.RecordCall(ctx, method, outcome, k.retried, time.Since(start))
	return result, err
}

// Call is an asynchronous call started by Go.
type Call struct {
	Method string
	Params []any
	Reply  any
	Error  error
	// Done receives the Call once it completes.
	Done chan *Call
}

func (call *Call) done(log *logger.Logger) {
	select {
	case call.Done <- call:
	default:
		log.Debug("discarding call reply due to insufficient Done chan capacity",
			logger.Fields(logger.FieldMethod, call.Method))
	}
}

// Go starts a call and returns immediately. The Call is sent on done when it
// completes. If done is nil a new channel is allocated; otherwise it must be
// buffered.
func (c *Client) Go(ctx context.Context, method string, params []any, done chan *Call) *Call {
	if done == nil {
		done = make(chan *Call, 1)
	} else if cap(done) == 0 {
		panic("xmlrpc: done channel is unbuffered")
	}
	call := &Call{Method: method, Params: slices.Clone(params), Done: done}
	go func() {
		call.Reply, call.Error = c.MethodCall(ctx, method, call.Params...)
		call.done(c.log)
	}()
	return call
}

// MethodCallFunc runs the call on its own goroutine and invokes fn exactly
// once with the result.
func (c *Client) MethodCallFunc(ctx context.Context, method string, params []any, fn func(any, error)) {
	params = slices.Clone(params)
	go func() {
		fn(c.MethodCall(ctx, method, params...))
	}()
}

// Close releases idle connections of the selected transport.
func (c *Client) Close(ctx context.Context) error {
	if c.adapter != nil {
		return c.adapter.Stop(ctx)
	}
	return nil
}
