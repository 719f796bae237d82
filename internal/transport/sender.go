package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/resilience"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrTransportUnavailable wraps dial failures. The loop keeps retrying.
	ErrTransportUnavailable = errors.New("transport unavailable")
	// ErrQueueFull is returned by TrySend when the outbound queue is full.
	ErrQueueFull = errors.New("outbound queue full")
	// ErrClosed is returned by TrySend after Close.
	ErrClosed = errors.New("transport closed")
	// ErrAlreadyRunning is returned by a second Start.
	ErrAlreadyRunning = errors.New("transport already running")
)

// Handler receives an inbound envelope.
type Handler func(env message.Envelope)

// Sender is the renderer's end of the channel to the host. Send never
// blocks; the connection loop started by Start owns the socket.
type Sender struct {
	cfg     Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
	breaker *resilience.Breaker
	dialer  *websocket.Dialer

	queue     chan message.Envelope
	closed    chan struct{}
	closeOnce sync.Once
	running   atomic.Bool

	// pending is the envelope whose write failed. Only the run loop touches it.
	pending *message.Envelope

	mu             sync.RWMutex
	state          State
	handlers       map[message.Type][]Handler
	anyHandlers    []Handler
	stateListeners []func(State)
}

// Option configures a Sender.
type Option func(*Sender)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records envelope and connection metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Sender) { s.metrics = m }
}

// WithBreaker replaces the dial circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(s *Sender) { s.breaker = b }
}

// New creates a Sender for cfg.Endpoint. Nothing is dialed until Start.
func New(cfg Config, opts ...Option) (*Sender, error) {
	cfg = cfg.withDefaults()
	if err := checkEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}

	s := &Sender{
		cfg:      cfg,
		logger:   zap.NewNop(),
		queue:    make(chan message.Envelope, cfg.QueueSize),
		closed:   make(chan struct{}),
		state:    Disconnected,
		handlers: make(map[message.Type][]Handler),
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = resilience.New("transport", resilience.LoggedSettings(s.logger, 5, cfg.MaxReconnectDelay))
	}
	return s, nil
}

// Endpoint returns the configured endpoint.
func (s *Sender) Endpoint() string {
	return s.cfg.Endpoint
}

// Send enqueues env for delivery. A full queue or a closed sender drops
// it with a warning.
func (s *Sender) Send(env message.Envelope) {
	if err := s.TrySend(env); err != nil {
		s.logger.Warn("dropping envelope",
			zap.String("type", env.Type.String()),
			zap.String("id", env.ID.String()),
			zap.Error(err),
		)
	}
}

// TrySend enqueues env without blocking.
func (s *Sender) TrySend(env message.Envelope) error {
	select {
	case <-s.closed:
		s.metrics.RecordEnvelopeDropped(env.Type.String(), "closed")
		return ErrClosed
	default:
	}

	select {
	case s.queue <- env:
		return nil
	default:
		s.metrics.RecordEnvelopeDropped(env.Type.String(), "queue_full")
		return ErrQueueFull
	}
}

// Queued returns the number of envelopes waiting to be written.
func (s *Sender) Queued() int {
	return len(s.queue)
}

// Handle registers h for inbound envelopes of type t.
func (s *Sender) Handle(t message.Type, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[t] = append(s.handlers[t], h)
}

// HandleAny registers h for every inbound envelope.
func (s *Sender) HandleAny(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anyHandlers = append(s.anyHandlers, h)
}

// OnStateChange registers a listener for connection state changes.
// Listeners run on the connection loop goroutine.
func (s *Sender) OnStateChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateListeners = append(s.stateListeners, fn)
}

// State returns the connection state.
func (s *Sender) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close stops the connection loop. Queued envelopes are not flushed.
func (s *Sender) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Done is closed by Close.
func (s *Sender) Done() <-chan struct{} {
	return s.closed
}

// Start runs the connection loop until ctx is done or Close is called.
func (s *Sender) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.setState(Closed)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	delay := s.cfg.ReconnectDelay
	for {
		if ctx.Err() != nil {
			return s.exitErr(ctx)
		}

		s.setState(Connecting)
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return s.exitErr(ctx)
			}
			s.setState(Disconnected)
			wait := delay
			if open := s.breaker.RetryAfter(); open > wait {
				wait = open
			}
			s.logger.Warn("dial failed",
				zap.String("endpoint", s.cfg.Endpoint),
				zap.Duration("retry_in", wait),
				zap.Error(err),
			)
			if !sleep(ctx, wait) {
				return s.exitErr(ctx)
			}
			s.metrics.IncReconnects()
			delay = nextDelay(delay, s.cfg.MaxReconnectDelay)
			continue
		}

		delay = s.cfg.ReconnectDelay
		s.setState(Connected)
		s.logger.Info("connected", zap.String("endpoint", s.cfg.Endpoint))

		s.serve(ctx, conn)

		if ctx.Err() != nil {
			return s.exitErr(ctx)
		}
		s.setState(Disconnected)
		s.logger.Info("disconnected, reconnecting", zap.Duration("retry_in", delay))
		if !sleep(ctx, delay) {
			return s.exitErr(ctx)
		}
		s.metrics.IncReconnects()
	}
}

func (s *Sender) exitErr(ctx context.Context) error {
	select {
	case <-s.closed:
		return nil
	default:
		return ctx.Err()
	}
}

func (s *Sender) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, err := resilience.Do(s.breaker, func() (*websocket.Conn, error) {
		conn, _, err := s.dialer.DialContext(ctx, s.cfg.Endpoint, nil)
		return conn, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}
	return conn, nil
}

func (s *Sender) setState(state State) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	listeners := make([]func(State), len(s.stateListeners))
	copy(listeners, s.stateListeners)
	s.mu.Unlock()

	s.metrics.SetTransportState(int(state))
	for _, fn := range listeners {
		fn(state)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextDelay(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}
