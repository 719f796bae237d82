package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/reactive"
	"github.com/GriffinCanCode/viewsync/internal/shared/id"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"go.uber.org/zap"
)

// ErrHostTypeLocked is returned when a session tries to bind a second host type.
var ErrHostTypeLocked = errors.New("host type already bound for this session")

// Sender delivers envelopes to the host. Send must not block.
type Sender interface {
	Send(env message.Envelope)
}

// ConnectionState is the App's view of the channel. It is never serialized.
type ConnectionState string

const (
	Offline ConnectionState = "offline"
	Online  ConnectionState = "online"
)

// App is the application context shared by the store, the renderer and
// the host adapter. Observers are notified only when a value changes.
type App struct {
	sched   *reactive.Scheduler
	subject *reactive.Subject
	logger  *zap.Logger

	mu         sync.RWMutex
	id         id.SessionID
	hostType   types.HostType
	activeView types.View
	sender     Sender
	connection ConnectionState
}

// New creates an App with a fresh session id and the default view.
func New(sched *reactive.Scheduler, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		sched:      sched,
		subject:    sched.NewSubject("app"),
		logger:     logger,
		id:         id.NewSessionID(),
		activeView: types.DefaultView,
		connection: Offline,
	}
}

// From builds an App from a snapshot. An empty id gets a fresh one and an
// empty view falls back to the default.
func From(sched *reactive.Scheduler, logger *zap.Logger, snap types.AppSnapshot) *App {
	a := New(sched, logger)
	a.apply(snap)
	return a
}

// Subject is notified on every observable change.
func (a *App) Subject() *reactive.Subject {
	return a.subject
}

// ID returns the session id.
func (a *App) ID() id.SessionID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.id
}

// HostType returns the bound host type.
func (a *App) HostType() types.HostType {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hostType
}

// IsHostType reports whether the bound host type is h.
func (a *App) IsHostType(h types.HostType) bool {
	return a.HostType() == h
}

// SetHostType binds the host type. Binding the same value again is a no-op;
// binding a different one fails. Use Update for a full replace.
func (a *App) SetHostType(h types.HostType) error {
	a.mu.Lock()
	if a.hostType == h {
		a.mu.Unlock()
		return nil
	}
	if a.hostType != types.HostUnset {
		current := a.hostType
		a.mu.Unlock()
		return fmt.Errorf("%w: bound %s, requested %s", ErrHostTypeLocked, current, h)
	}
	a.hostType = h
	a.mu.Unlock()

	a.subject.Notify()
	return nil
}

// ActiveView returns the active view.
func (a *App) ActiveView() types.View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeView
}

// IsActiveView reports whether v is the active view.
func (a *App) IsActiveView(v types.View) bool {
	return a.ActiveView() == v
}

// SetActiveView switches the view and reports whether it changed.
func (a *App) SetActiveView(v types.View) bool {
	a.mu.Lock()
	if a.activeView == v {
		a.mu.Unlock()
		return false
	}
	a.activeView = v
	a.mu.Unlock()

	a.subject.Notify()
	return true
}

// Connection returns the last known channel state.
func (a *App) Connection() ConnectionState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connection
}

// SetConnection records the channel state. It is volatile and does not
// notify observers.
func (a *App) SetConnection(c ConnectionState) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connection == c {
		return false
	}
	a.connection = c
	return true
}

// SetSender binds the sender used by Send.
func (a *App) SetSender(s Sender) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sender = s
}

// Sender returns the bound sender, nil when none.
func (a *App) Sender() Sender {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sender
}

// Send forwards env to the bound sender. Without one it is dropped.
func (a *App) Send(env message.Envelope) {
	s := a.Sender()
	if s == nil {
		a.logger.Debug("no sender bound, dropping envelope",
			zap.String("type", env.Type.String()),
			zap.String("id", env.ID.String()),
		)
		return
	}
	s.Send(env)
}

// Snapshot returns the serializable state.
func (a *App) Snapshot() types.AppSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return types.AppSnapshot{
		ID:         a.id.String(),
		HostType:   a.hostType,
		ActiveView: a.activeView,
	}
}

// Update replaces the serializable state from snap with a single
// notification. It may rebind the host type. An empty id keeps the current
// session id and an empty view resets to the default.
func (a *App) Update(snap types.AppSnapshot) {
	if a.apply(snap) {
		a.subject.Notify()
	}
}

func (a *App) apply(snap types.AppSnapshot) bool {
	view := snap.ActiveView
	if view == "" {
		view = types.DefaultView
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	changed := a.hostType != snap.HostType || a.activeView != view
	if snap.ID != "" && id.SessionID(snap.ID) != a.id {
		a.id = id.SessionID(snap.ID)
		changed = true
	}
	a.hostType = snap.HostType
	a.activeView = view
	return changed
}
