package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/errors"
	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/observability"
	"github.com/kbukum/xmlrpc/server/middleware"
)

// handleRPC decodes one methodCall, dispatches it and writes the response
// or fault.
func (s *Server) handleRPC(c *gin.Context) {
	start := time.Now()
	ctx, span := s.tracer.Start(c.Request.Context(), observability.SpanServerCall,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(observability.AttrRPCSystem, "xmlrpc"),
			attribute.String(observability.AttrRequestID, c.GetString(logger.FieldRequestID)),
		),
	)
	defer span.End()

	method, params, err := s.codec.DecodeCall(c.Request.Body)
	if err != nil {
		s.fail(c, ctx, span, "", errors.ParseError(err), start)
		return
	}
	c.Set(logger.FieldMethod, method)
	span.SetAttributes(attribute.String(observability.AttrRPCMethod, method))

	h, ok := s.methods.Lookup(method)
	if !ok {
		s.fail(c, ctx, span, method, errors.MethodNotFound(method), start)
		return
	}
	result, err := h(ctx, params)
	if err != nil {
		s.fail(c, ctx, span, method, err, start)
		return
	}
	body, err := s.codec.EncodeResponse(result)
	if err != nil {
		s.fail(c, ctx, span, method, errors.Internal(err), start)
		return
	}

	c.Data(http.StatusOK, "text/xml; charset=utf-8", body)
	s.metrics.RecordCall(ctx, method, observability.OutcomeSuccess, false, time.Since(start))
}

func (s *Server) fail(c *gin.Context, ctx context.Context, span trace.Span, method string, err error, start time.Time) {
	fault := toFault(method, err)
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, fault.Message)
	s.log.WithContext(ctx).Debug("call failed", logger.Fields(
		logger.FieldMethod, method,
		logger.FieldError, err.Error(),
		"fault_code", fault.Code,
	))
	s.metrics.RecordCall(ctx, method, observability.OutcomeFault, false, time.Since(start))
	middleware.WriteFault(c, s.codec, fault)
}

// toFault passes *codec.Fault through and maps everything else via AppError.
// A handler that ran out of time answers with a TIMEOUT fault.
func toFault(method string, err error) *codec.Fault {
	var f *codec.Fault
	if stderrors.As(err, &f) {
		return f
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(method).ToFault()
	}
	return errors.Wrap(err).ToFault()
}
