package host

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/domain/library"
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/domain/store"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/GriffinCanCode/viewsync/internal/transport"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned by Launch after the first successful start.
var ErrAlreadyStarted = errors.New("host adapter already started")

// Adapter integrates a session with its host environment.
type Adapter interface {
	Kind() types.HostType
	Start(ctx context.Context) error
}

// Router registers inbound envelope handlers.
type Router interface {
	Handle(t message.Type, h transport.Handler)
}

// Deps are what adapters need from the session.
type Deps struct {
	Store   *store.Store
	Library *library.Library
	Router  Router
	// Exec runs fn on the session's mutation goroutine and waits for it.
	Exec   func(fn func()) error
	Logger *zap.Logger
}

// Select returns the adapter for kind. Hosts without local integration
// get none.
func Select(kind types.HostType, deps Deps) (Adapter, bool) {
	switch kind {
	case types.HostNode:
		return NewNodeAdapter(deps), true
	case types.HostBrowser, types.HostUnset:
		return nil, false
	default:
		return nil, false
	}
}

// Launcher starts at most one adapter per session.
type Launcher struct {
	mu      sync.Mutex
	started Adapter
}

// Launch starts a. Any call after a successful start fails with
// ErrAlreadyStarted; a failed start can be retried.
func (l *Launcher) Launch(ctx context.Context, a Adapter) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started != nil {
		return ErrAlreadyStarted
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	l.started = a
	return nil
}

// Started returns the running adapter.
func (l *Launcher) Started() (Adapter, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started, l.started != nil
}
