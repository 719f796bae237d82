package tracing

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Propagation headers.
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// HTTPMiddleware traces each request, continuing a trace passed in the
// X-Trace-ID and X-Span-ID headers.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := withTrace(c.Request.Context(),
			TraceID(c.GetHeader(HeaderTraceID)),
			SpanID(c.GetHeader(HeaderSpanID)),
		)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, "http "+route)
		span.Method = c.Request.Method
		span.Route = route

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.Status = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.Fail(c.Errors.Last())
		}
		span.Finish()
		tracer.Submit(span)
	}
}

// TraceEnvelope runs fn inside a span for one inbound envelope. The ctx
// passed to fn carries the span for LogFields.
func TraceEnvelope(ctx context.Context, tracer *Tracer, ref EnvelopeRef, fn func(context.Context) error) error {
	if tracer == nil {
		return fn(ctx)
	}

	span, ctx := tracer.StartSpan(ctx, "envelope "+ref.Type)
	span.Envelope = ref

	err := fn(ctx)
	if err != nil {
		span.Fail(err)
	}
	span.Finish()
	tracer.Submit(span)
	return err
}
