package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/domain/app"
	"github.com/GriffinCanCode/viewsync/internal/domain/history"
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/domain/navigation"
	"github.com/GriffinCanCode/viewsync/internal/domain/project"
	"github.com/GriffinCanCode/viewsync/internal/domain/store"
	"github.com/GriffinCanCode/viewsync/internal/host"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/reactive"
	"github.com/GriffinCanCode/viewsync/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultHistoryMax bounds the undo history when Options.HistoryMax is unset.
const DefaultHistoryMax = 100

// Session is one bootstrapped renderer: the store, its reactions and the
// channel to the host.
type Session struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics

	sched     *reactive.Scheduler
	loop      *reactive.Loop
	app       *app.App
	store     *store.Store
	transport Transport
	nav       *navigation.Stack
	shadow    *navigation.Shadow
	launcher  host.Launcher
	debug     *Debug

	// owned by the loop goroutine
	connectedBefore bool
	reactions       []*reactive.Reaction

	group  *errgroup.Group
	cancel context.CancelFunc
	once   sync.Once
}

// Start bootstraps a session from opts and starts its transport. The
// session runs until ctx is done or Close is called.
func Start(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.String("component", "renderer"))

	sched := reactive.NewScheduler(logger, opts.Metrics)
	a := app.New(sched, logger)

	tr := opts.Transport
	if tr == nil {
		cfg := opts.TransportConfig
		if cfg.Endpoint == "" {
			cfg.Endpoint = transport.Endpoint(opts.Location)
		}
		sender, err := transport.New(cfg,
			transport.WithLogger(logger),
			transport.WithMetrics(opts.Metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("create transport: %w", err)
		}
		tr = sender
	}

	historyMax := opts.HistoryMax
	if historyMax <= 0 {
		historyMax = DefaultHistoryMax
	}

	a.SetSender(tr)
	st := store.New(sched, a, history.New(historyMax),
		store.WithLogger(logger),
		store.WithMetrics(opts.Metrics),
	)
	st.SetServerPort(opts.Location.Port())
	if sender, ok := tr.(*transport.Sender); ok {
		port, known := st.ServerPort()
		if !known {
			port = -1
		}
		if err := transport.ValidateEndpoint(sender.Endpoint(), port); err != nil {
			logger.Warn("transport endpoint mismatch", zap.Error(err))
		}
	}

	nav := navigation.NewStack()
	s := &Session{
		logger:    logger,
		metrics:   opts.Metrics,
		sched:     sched,
		loop:      reactive.NewLoop(0, logger),
		app:       a,
		store:     st,
		transport: tr,
		nav:       nav,
		shadow:    navigation.NewShadow(nav),
	}
	s.debug = &Debug{Store: st, app: a, viewport: opts.Viewport}

	s.announce()
	if err := s.hydrate(opts); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	group, gctx := errgroup.WithContext(runCtx)
	s.group = group
	group.Go(func() error { return s.loop.Run(gctx) })

	if kind := a.HostType(); kind.Integrated() {
		if err := s.launchAdapter(gctx, opts); err != nil {
			cancel()
			_ = group.Wait()
			return nil, err
		}
	}

	if err := st.ResolveView(); err != nil {
		logger.Info("active view unavailable", zap.Error(err))
	}

	s.createFocusReaction()
	s.createListeners()
	s.createHandlers()
	s.createNotifiers()

	group.Go(func() error {
		defer s.loop.Stop()
		return tr.Start(gctx)
	})

	logger.Info("renderer session started",
		zap.String("session", a.ID().String()),
		zap.String("host", a.HostType().String()),
		zap.String("view", string(a.ActiveView())),
	)
	return s, nil
}

// hydrate applies the boot payload. A project is committed as the first
// history entry.
func (s *Session) hydrate(opts Options) error {
	p := opts.Payload
	if p.Host != "" {
		if err := s.app.SetHostType(p.Host); err != nil {
			return fmt.Errorf("hydrate: %w", err)
		}
	}
	if p.View != "" {
		s.app.SetActiveView(p.View)
	}
	if p.Project != nil {
		s.store.SetProject(project.From(*p.Project))
		s.store.Commit()
	}
	return nil
}

func (s *Session) launchAdapter(ctx context.Context, opts Options) error {
	adapter, ok := host.Select(s.app.HostType(), host.Deps{
		Store:   s.store,
		Library: opts.Library,
		Router:  s.transport,
		Exec: func(fn func()) error {
			return s.loop.Do(ctx, fn)
		},
		Logger: s.logger,
	})
	if !ok {
		return nil
	}
	if err := s.launcher.Launch(ctx, adapter); err != nil {
		return fmt.Errorf("start %s adapter: %w", adapter.Kind(), err)
	}
	return nil
}

func (s *Session) batch(fn func()) {
	s.sched.Batch(fn)
}

func (s *Session) resolveView() {
	if err := s.store.ResolveView(); err != nil {
		s.logger.Info("active view unavailable", zap.Error(err))
	}
}

// App returns the session's application context.
func (s *Session) App() *app.App {
	return s.app
}

// Store returns the session's store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Debug returns the inspection handle.
func (s *Session) Debug() *Debug {
	return s.debug
}

// Navigation returns the session's navigation history.
func (s *Session) Navigation() *navigation.Stack {
	return s.nav
}

// Adapter returns the running host adapter, if any.
func (s *Session) Adapter() (host.Adapter, bool) {
	return s.launcher.Started()
}

// Do runs fn on the session loop inside one batch and waits for it.
func (s *Session) Do(ctx context.Context, fn func()) error {
	return s.loop.Do(ctx, func() { s.batch(fn) })
}

// Send posts env to the host.
func (s *Session) Send(env message.Envelope) {
	s.app.Send(env)
}

// Back pops one navigation entry.
func (s *Session) Back() bool {
	return s.nav.Back()
}

// Forward re-enters the next navigation entry.
func (s *Session) Forward() bool {
	return s.nav.Forward()
}

// Wait blocks until the session stops. Cancellation is not an error.
func (s *Session) Wait() error {
	err := s.group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the transport and the loop, disposes reactions and waits.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.transport.Close()
		s.cancel()
	})
	err := s.Wait()
	for _, r := range s.reactions {
		r.Dispose()
	}
	return err
}
