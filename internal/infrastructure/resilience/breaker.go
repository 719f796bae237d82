package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrCircuitOpen is returned while the breaker is cooling down.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when every half-open probe slot is taken.
	ErrTooManyRequests = errors.New("too many requests")
)

// State is the breaker's position.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configure a Breaker. Zero fields take defaults.
type Settings struct {
	// TripAfter consecutive failures open the breaker. Default 5.
	TripAfter uint32
	// Cooldown is how long the breaker stays open. Default 10s.
	Cooldown time.Duration
	// Probes is how many trial calls half-open admits; all must succeed to
	// close again. Default 1.
	Probes uint32
	// Ignore reports errors that say nothing about the remote side. They
	// neither count as failures nor reset the streak. Default: context
	// cancellation.
	Ignore func(error) bool
	// OnStateChange runs under the breaker lock and must not call back
	// into it.
	OnStateChange func(name string, from, to State)
}

func (s Settings) withDefaults() Settings {
	if s.TripAfter == 0 {
		s.TripAfter = 5
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 10 * time.Second
	}
	if s.Probes == 0 {
		s.Probes = 1
	}
	if s.Ignore == nil {
		s.Ignore = func(err error) bool { return errors.Is(err, context.Canceled) }
	}
	return s
}

// LoggedSettings trips after tripAfter consecutive failures, cools down for
// cooldown and logs every state change.
func LoggedSettings(logger *zap.Logger, tripAfter uint32, cooldown time.Duration) Settings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Settings{
		TripAfter: tripAfter,
		Cooldown:  cooldown,
		OnStateChange: func(name string, from, to State) {
			logger.Info("circuit breaker state change",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	}
}

// Breaker guards calls to a remote that may be down: the renderer's dials
// to the host and its boot page fetches.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	state     State
	epoch     uint64 // bumped on every transition; stale outcomes are ignored
	failures  uint32
	probes    uint32
	passed    uint32
	openUntil time.Time
}

// New creates a closed breaker.
func New(name string, settings Settings) *Breaker {
	return &Breaker{name: name, settings: settings.withDefaults(), now: time.Now}
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh(b.now())
	return b.state
}

// Failures returns the current run of consecutive failures.
func (b *Breaker) Failures() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// RetryAfter returns how long the breaker stays open, or zero when calls
// are admitted.
func (b *Breaker) RetryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.refresh(now)
	if b.state != StateOpen {
		return 0
	}
	return b.openUntil.Sub(now)
}

// Call runs fn if the breaker admits it and records the outcome.
func (b *Breaker) Call(fn func() error) error {
	epoch, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.record(epoch, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	err = fn()
	b.record(epoch, err)
	return err
}

// Do runs fn through b and returns its result.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var result T
	err := b.Call(func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.now())
	switch b.state {
	case StateOpen:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if b.probes >= b.settings.Probes {
			return 0, ErrTooManyRequests
		}
		b.probes++
	}
	return b.epoch, nil
}

func (b *Breaker) record(epoch uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if epoch != b.epoch {
		return
	}
	if err != nil && b.settings.Ignore(err) {
		if b.state == StateHalfOpen {
			b.probes--
		}
		return
	}

	now := b.now()
	switch {
	case err == nil && b.state == StateClosed:
		b.failures = 0
	case err == nil && b.state == StateHalfOpen:
		b.passed++
		if b.passed >= b.settings.Probes {
			b.transition(StateClosed, now)
		}
	case b.state == StateClosed:
		b.failures++
		if b.failures >= b.settings.TripAfter {
			b.transition(StateOpen, now)
		}
	case b.state == StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

func (b *Breaker) refresh(now time.Time) {
	if b.state == StateOpen && !now.Before(b.openUntil) {
		b.transition(StateHalfOpen, now)
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	from := b.state
	b.state = to
	b.epoch++
	b.failures, b.probes, b.passed = 0, 0, 0
	if to == StateOpen {
		b.openUntil = now.Add(b.settings.Cooldown)
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
