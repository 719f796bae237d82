package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestStartSpanPropagatesTrace(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	child, _ := tracer.StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Equal(t, parent.TraceID, TraceIDFrom(ctx))
}

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))

	tracer, _ := newObservedTracer()
	defer tracer.Close()
	span, ctx := tracer.StartSpan(context.Background(), "op")

	fields := LogFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, string(span.TraceID), fields[0].String)
	assert.Equal(t, string(span.SpanID), fields[1].String)
}

func TestTraceEnvelopeTagsEnvelope(t *testing.T) {
	tracer, logs := newObservedTracer()

	ref := EnvelopeRef{Window: "win_1", Type: "window-focused", ID: "env-1"}
	var inner context.Context
	boom := errors.New("boom")
	err := TraceEnvelope(context.Background(), tracer, ref, func(ctx context.Context) error {
		inner = ctx
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NotEmpty(t, TraceIDFrom(inner))

	tracer.Close()
	entries := logs.FilterMessage("span completed with error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "envelope window-focused", fields["operation"])
	assert.Equal(t, "win_1", fields["window"])
	assert.Equal(t, "window-focused", fields["envelope_type"])
	assert.Equal(t, "env-1", fields["envelope_id"])
	assert.Equal(t, string(TraceIDFrom(inner)), fields["trace_id"])
}

func TestTraceEnvelopeWithoutTracer(t *testing.T) {
	called := false
	err := TraceEnvelope(context.Background(), nil, EnvelopeRef{Type: "undo"}, func(context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	tracer, logs := newObservedTracer()
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	span.Finish()
	assert.NotPanics(t, func() { tracer.Submit(span) })
	assert.Equal(t, int64(1), tracer.Dropped())
	assert.Empty(t, logs.FilterMessage("span completed").All())
}

func TestSubmitRacesClose(t *testing.T) {
	tracer, _ := newObservedTracer()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = TraceEnvelope(context.Background(), tracer, EnvelopeRef{Type: "undo"}, func(context.Context) error {
					return nil
				})
			}
		}()
	}
	tracer.Close()
	wg.Wait()
}

func TestHTTPMiddlewareSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderTraceID, "trace-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	tracer.Close()
	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "204", fields["http.status"])
	assert.Equal(t, "/health", fields["http.route"])
	assert.Equal(t, "trace-abc", fields["trace_id"])
}
