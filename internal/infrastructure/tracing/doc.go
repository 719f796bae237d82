/*
Package tracing provides lightweight request and envelope tracing.

# Overview

Spans are created per host HTTP request and per inbound envelope handled by
the host hub. Completed spans are buffered and reported through zap by a
single collector goroutine.

# Usage

	tracer := tracing.New("viewsync-host", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	ref := tracing.EnvelopeRef{Window: windowID, Type: env.Type.String(), ID: env.ID.String()}
	err := tracing.TraceEnvelope(ctx, tracer, ref, func(ctx context.Context) error {
		logger.Debug("applying", tracing.LogFields(ctx)...)
		return hub.apply(ctx, env)
	})

Spans submitted after Close are counted as dropped rather than sent.

# Trace Format

Traces use HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation
*/
package tracing
