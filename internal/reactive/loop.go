package reactive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrLoopStopped is returned when posting to a loop that has exited.
var ErrLoopStopped = errors.New("reactive: loop stopped")

// Loop serializes tasks onto one goroutine. Everything that mutates the
// store after bootstrap is posted here, so batches never interleave.
type Loop struct {
	tasks   chan func()
	stopped chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// NewLoop creates a loop with a task buffer of size.
func NewLoop(size int, logger *zap.Logger) *Loop {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		tasks:   make(chan func(), size),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run executes posted tasks in order until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopped:
			return nil
		case task := <-l.tasks:
			l.exec(task)
		}
	}
}

// Post enqueues fn. It blocks while the buffer is full.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.stopped:
		return ErrLoopStopped
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	}
}

// Do posts fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	}
}

// Stop ends the loop. Queued tasks are discarded.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stopped) })
}

// Done is closed once the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

func (l *Loop) exec(task func()) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("loop task panicked", zap.String("panic", fmt.Sprint(p)))
		}
	}()
	task()
}
