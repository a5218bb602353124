// Package observability wires OpenTelemetry tracing and metrics for the
// XML-RPC client and server.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("xmlrpc"))
//	defer tp.Shutdown(ctx)
//
//	m, err := observability.NewRPCMetrics(observability.Meter(observability.InstrumentationName), observability.SideClient)
//	m.RecordCall(ctx, "sample.add", observability.OutcomeSuccess, false, elapsed)
package observability
