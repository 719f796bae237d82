package store

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/domain/app"
	"github.com/GriffinCanCode/viewsync/internal/domain/history"
	"github.com/GriffinCanCode/viewsync/internal/domain/project"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/reactive"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"go.uber.org/zap"
)

// ErrMissingProjectForView is returned by ResolveView when the active view
// needs a project and none is loaded.
var ErrMissingProjectForView = errors.New("active view requires a project")

// FallbackView is shown when the active view cannot be rendered.
const FallbackView = types.ViewSplashScreen

// Store is the renderer's view store. It owns the edit history and the
// project reference and shares the App with the rest of the session.
type Store struct {
	sched   *reactive.Scheduler
	app     *app.App
	history *history.History
	logger  *zap.Logger
	metrics *monitoring.Metrics

	projectSubject *reactive.Subject
	historySubject *reactive.Subject

	mu         sync.RWMutex
	project    *project.Project
	serverPort int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records history operations.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a store around an App and an empty History.
func New(sched *reactive.Scheduler, a *app.App, h *history.History, opts ...Option) *Store {
	s := &Store{
		sched:          sched,
		app:            a,
		history:        h,
		logger:         zap.NewNop(),
		projectSubject: sched.NewSubject("project"),
		historySubject: sched.NewSubject("history"),
		serverPort:     -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// App returns the shared application context.
func (s *Store) App() *app.App {
	return s.app
}

// Sender returns the App's sender.
func (s *Store) Sender() app.Sender {
	return s.app.Sender()
}

// History returns the edit history.
func (s *Store) History() *history.History {
	return s.history
}

// Scheduler returns the scheduler all store mutations batch on.
func (s *Store) Scheduler() *reactive.Scheduler {
	return s.sched
}

// ProjectObservable is notified when the project reference changes.
func (s *Store) ProjectObservable() *reactive.Subject {
	return s.projectSubject
}

// HistoryObservable is notified after every commit, undo and redo.
func (s *Store) HistoryObservable() *reactive.Subject {
	return s.historySubject
}

// SetProject replaces the project reference without committing. Observers
// are notified only when the identity changes.
func (s *Store) SetProject(p *project.Project) bool {
	s.mu.Lock()
	if s.project == p {
		s.mu.Unlock()
		return false
	}
	s.project = p
	s.mu.Unlock()

	s.projectSubject.Notify()
	return true
}

// GetProject returns the loaded project. Having none is normal.
func (s *Store) GetProject() (*project.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project, s.project != nil
}

// Snapshot captures App and Project state.
func (s *Store) Snapshot() types.Snapshot {
	snap := types.Snapshot{App: s.app.Snapshot()}
	if p, ok := s.GetProject(); ok {
		ps := p.Snapshot()
		snap.Project = &ps
	}
	return snap
}

// Commit records the current state as a history entry. It is the only
// operation that grows the history.
func (s *Store) Commit() types.Snapshot {
	snap := s.Snapshot()
	s.history.Commit(snap)

	if p, ok := s.GetProject(); ok {
		p.MarkCommitted()
	}

	s.metrics.RecordHistoryOp("commit", "ok", s.history.Len())
	s.logger.Debug("committed snapshot",
		zap.Int("cursor", s.history.Cursor()),
		zap.String("project", snap.ProjectID()),
	)

	s.historySubject.Notify()
	return snap
}

// Undo restores the previous snapshot. ErrNoHistory leaves state untouched.
func (s *Store) Undo() error {
	snap, err := s.history.Undo()
	if err != nil {
		s.metrics.RecordHistoryOp("undo", "empty", s.history.Len())
		return fmt.Errorf("undo: %w", err)
	}
	s.restore(snap)
	s.metrics.RecordHistoryOp("undo", "ok", s.history.Len())
	return nil
}

// Redo restores the next snapshot. ErrNoFuture leaves state untouched.
func (s *Store) Redo() error {
	snap, err := s.history.Redo()
	if err != nil {
		s.metrics.RecordHistoryOp("redo", "empty", s.history.Len())
		return fmt.Errorf("redo: %w", err)
	}
	s.restore(snap)
	s.metrics.RecordHistoryOp("redo", "ok", s.history.Len())
	return nil
}

func (s *Store) restore(snap types.Snapshot) {
	s.sched.Batch(func() {
		s.app.Update(snap.App)

		if snap.Project == nil {
			s.SetProject(nil)
		} else {
			p := project.From(*snap.Project)
			s.SetProject(p)
		}

		s.historySubject.Notify()
	})
}

// SetServerPort records the host port. Only non-negative integers are
// accepted; anything else is ignored.
func (s *Store) SetServerPort(raw string) bool {
	if raw == "" {
		return false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverPort = port
	return true
}

// ServerPort returns the recorded host port.
func (s *Store) ServerPort() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverPort, s.serverPort >= 0
}

// ResolveView switches to FallbackView when the active view needs a
// project and none is loaded. The returned error is informational.
func (s *Store) ResolveView() error {
	view := s.app.ActiveView()
	if !view.RequiresProject() {
		return nil
	}
	if _, ok := s.GetProject(); ok {
		return nil
	}

	s.app.SetActiveView(FallbackView)
	return fmt.Errorf("%w: %s", ErrMissingProjectForView, view)
}
