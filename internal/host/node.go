package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/domain/project"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"go.uber.org/zap"
)

var (
	// ErrNoProject is returned when saving without a loaded project.
	ErrNoProject = errors.New("no project loaded")
	// ErrFileQueueFull is returned when too many file operations are pending.
	ErrFileQueueFull = errors.New("file operation queue full")
	// ErrAdapterStopped is returned after the adapter's context ends.
	ErrAdapterStopped = errors.New("node adapter stopped")
)

const fileQueueSize = 16

// NodeAdapter serves a host with local file access: it saves the current
// project and opens project files on request. File I/O runs on the
// adapter's own worker so the transport reader never waits on disk.
type NodeAdapter struct {
	deps   Deps
	logger *zap.Logger

	jobs    chan fileJob
	pending sync.WaitGroup

	mu      sync.Mutex
	stopped bool // Protected by mu
}

type fileJob struct {
	name string
	run  func() error
}

// NewNodeAdapter creates a node adapter.
func NewNodeAdapter(deps Deps) *NodeAdapter {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Exec == nil {
		deps.Exec = func(fn func()) error {
			fn()
			return nil
		}
	}
	return &NodeAdapter{
		deps:   deps,
		logger: logger.With(zap.String("adapter", "node")),
		jobs:   make(chan fileJob, fileQueueSize),
	}
}

// Kind implements Adapter.
func (a *NodeAdapter) Kind() types.HostType {
	return types.HostNode
}

// Start registers the adapter's envelope handlers and runs the file worker
// until ctx ends.
func (a *NodeAdapter) Start(ctx context.Context) error {
	if a.deps.Store == nil || a.deps.Library == nil || a.deps.Router == nil {
		return fmt.Errorf("node adapter: store, library and router are required")
	}

	a.deps.Router.Handle(message.TypeSaveProject, func(env message.Envelope) {
		var req message.SaveProject
		if len(env.Payload) > 0 {
			if err := message.DecodePayload(env, &req); err != nil {
				a.logger.Warn("ignoring save request", zap.Error(err))
				return
			}
		}
		a.enqueue("save", func() error {
			_, err := a.Save(req.Path)
			return err
		})
	})

	a.deps.Router.Handle(message.TypeOpenFile, func(env message.Envelope) {
		var req message.OpenFile
		if err := message.DecodePayload(env, &req); err != nil || req.Path == "" {
			a.logger.Warn("ignoring open request", zap.String("id", env.ID.String()), zap.Error(err))
			return
		}
		a.enqueue("open "+req.Path, func() error {
			return a.Open(req.Path)
		})
	})

	go a.work(ctx)

	a.logger.Info("node adapter started", zap.String("library", a.deps.Library.Root()))
	return nil
}

// Wait blocks until every queued file operation has finished or been
// discarded.
func (a *NodeAdapter) Wait() {
	a.pending.Wait()
}

func (a *NodeAdapter) enqueue(name string, run func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		a.logger.Warn("file operation dropped", zap.String("op", name), zap.Error(ErrAdapterStopped))
		return
	}

	a.pending.Add(1)
	select {
	case a.jobs <- fileJob{name: name, run: run}:
	default:
		a.pending.Done()
		a.logger.Warn("file operation dropped", zap.String("op", name), zap.Error(ErrFileQueueFull))
	}
}

func (a *NodeAdapter) work(ctx context.Context) {
	for {
		select {
		case job := <-a.jobs:
			if err := job.run(); err != nil {
				a.logger.Warn("file operation failed", zap.String("op", job.name), zap.Error(err))
			}
			a.pending.Done()

		case <-ctx.Done():
			a.mu.Lock()
			a.stopped = true
			a.mu.Unlock()
			for n := len(a.jobs); n > 0; n-- {
				job := <-a.jobs
				a.logger.Debug("file operation discarded", zap.String("op", job.name))
				a.pending.Done()
			}
			return
		}
	}
}

// Save writes the current project and acknowledges with project-saved.
func (a *NodeAdapter) Save(path string) (string, error) {
	var (
		snap types.ProjectSnapshot
		ok   bool
	)
	if err := a.deps.Exec(func() {
		var p *project.Project
		if p, ok = a.deps.Store.GetProject(); ok {
			snap = p.Snapshot()
		}
	}); err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoProject
	}

	written, err := a.deps.Library.Save(snap, path)
	if err != nil {
		return "", err
	}

	if err := a.deps.Exec(func() {
		if p, ok := a.deps.Store.GetProject(); ok && p.ID() == snap.ID {
			p.SetPath(written)
		}
		a.deps.Store.App().Send(message.NewProjectSaved(snap.ID, written))
	}); err != nil {
		return "", err
	}
	return written, nil
}

// Open loads a project file, makes it the current project, shows its
// detail view and commits, all in one batch.
func (a *NodeAdapter) Open(path string) error {
	snap, err := a.deps.Library.Load(path)
	if err != nil {
		return err
	}

	s := a.deps.Store
	return a.deps.Exec(func() {
		s.Scheduler().Batch(func() {
			s.SetProject(project.From(snap))
			s.App().SetActiveView(types.ViewPageDetail)
			s.Commit()
		})
	})
}
