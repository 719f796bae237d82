package tracing

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/shared/id"
	"go.uber.org/zap"
)

// TraceID groups the spans of one request or one envelope.
type TraceID string

// SpanID identifies a single span.
type SpanID string

const spanBuffer = 1000

// EnvelopeRef names the envelope a span covers.
type EnvelopeRef struct {
	Window string
	Type   string
	ID     string
}

// Span is one traced host operation: an HTTP request or an inbound
// envelope from a window.
type Span struct {
	TraceID  TraceID
	SpanID   SpanID
	ParentID SpanID
	Name     string
	Start    time.Time
	Duration time.Duration

	Envelope EnvelopeRef
	Method   string
	Route    string
	Status   int
	Err      error
}

// Finish stamps the span duration.
func (s *Span) Finish() {
	s.Duration = time.Since(s.Start)
}

// Fail records err on the span.
func (s *Span) Fail(err error) {
	s.Err = err
	if s.Status == 0 {
		s.Status = 500
	}
}

func (s *Span) fields(service string) []zap.Field {
	fields := []zap.Field{
		zap.String("trace_id", string(s.TraceID)),
		zap.String("span_id", string(s.SpanID)),
		zap.String("operation", s.Name),
		zap.String("service", service),
		zap.Duration("duration", s.Duration),
	}
	if s.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(s.ParentID)))
	}
	if s.Envelope.Window != "" {
		fields = append(fields, zap.String("window", s.Envelope.Window))
	}
	if s.Envelope.Type != "" {
		fields = append(fields,
			zap.String("envelope_type", s.Envelope.Type),
			zap.String("envelope_id", s.Envelope.ID),
		)
	}
	if s.Method != "" {
		fields = append(fields,
			zap.String("http.method", s.Method),
			zap.String("http.route", s.Route),
			zap.String("http.status", strconv.Itoa(s.Status)),
		)
	}
	if s.Err != nil {
		fields = append(fields, zap.Error(s.Err))
	}
	return fields
}

// Tracer buffers finished spans and reports them through zap from a single
// collector goroutine. Spans submitted after Close are dropped.
type Tracer struct {
	service string
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool // Protected by mu
	spans  chan *Span
	done   chan struct{}

	dropped atomic.Int64
}

// New starts a tracer for service.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.collect()
	return t
}

// StartSpan opens a span under the trace carried by ctx, or a new trace.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := TraceIDFrom(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}
	parentID, _ := ctx.Value(spanIDKey).(SpanID)

	span := &Span{
		TraceID:  traceID,
		SpanID:   SpanID(id.NewRequestID()),
		ParentID: parentID,
		Name:     name,
		Start:    time.Now(),
	}
	return span, withTrace(ctx, traceID, span.SpanID)
}

// Submit hands a finished span to the collector. It never blocks.
func (t *Tracer) Submit(span *Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		t.dropped.Add(1)
		return
	}
	select {
	case t.spans <- span:
	default:
		t.dropped.Add(1)
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("operation", span.Name),
		)
	}
}

// Dropped reports how many spans were discarded.
func (t *Tracer) Dropped() int64 {
	return t.dropped.Load()
}

// Close flushes buffered spans and stops the collector. It is safe to call
// more than once and concurrently with Submit.
func (t *Tracer) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.spans)
	}
	t.mu.Unlock()
	<-t.done
}

func (t *Tracer) collect() {
	defer close(t.done)
	for span := range t.spans {
		fields := span.fields(t.service)
		if span.Err != nil {
			t.logger.Error("span completed with error", fields...)
			continue
		}
		t.logger.Debug("span completed", fields...)
	}
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

func withTrace(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// TraceIDFrom returns the trace carried by ctx, if any.
func TraceIDFrom(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}

// LogFields returns zap fields tying a log line to the span in ctx.
func LogFields(ctx context.Context) []zap.Field {
	traceID := TraceIDFrom(ctx)
	if traceID == "" {
		return nil
	}
	fields := []zap.Field{zap.String("trace_id", string(traceID))}
	if spanID, ok := ctx.Value(spanIDKey).(SpanID); ok {
		fields = append(fields, zap.String("span_id", string(spanID)))
	}
	return fields
}
