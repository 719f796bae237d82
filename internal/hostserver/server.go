package hostserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/api/middleware"
	"github.com/GriffinCanCode/viewsync/internal/domain/library"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/config"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/logging"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/GriffinCanCode/viewsync/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server is the development host: it serves boot pages and accepts
// renderer connections.
type Server struct {
	router    *gin.Engine
	hub       *Hub
	library   *library.Library
	pages     *pageRenderer
	envelopes *utils.EnvelopeValidator
	hostType  types.HostType
	ws        WSConfig

	logger  *zap.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	started time.Time

	baseCtx    context.Context
	cancelBase context.CancelFunc
	closeOnce  sync.Once

	// Hijacked /ws handlers are invisible to http.Server.Shutdown.
	connMu  sync.Mutex
	closing bool // Protected by connMu
	conns   sync.WaitGroup
}

// NewServer creates a new server instance. A nil logger is built from
// the logging config.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development, "host").Logger
	}

	hostType, err := types.ParseHostType(cfg.Host.HostType)
	if err != nil {
		return nil, fmt.Errorf("host type: %w", err)
	}

	logger.Info("Initializing viewsync host",
		zap.String("port", cfg.Host.Port),
		zap.String("host_type", hostType.String()),
		zap.String("projects", cfg.Host.ProjectsDir),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("host", logger)

	ws := DefaultWSConfig()
	if cfg.Transport.WriteTimeout > 0 {
		ws.WriteTimeout = cfg.Transport.WriteTimeout
	}
	if cfg.Transport.PingInterval > 0 {
		ws.PingInterval = cfg.Transport.PingInterval
	}
	if cfg.Transport.ReadTimeout > ws.PingInterval {
		ws.ReadTimeout = cfg.Transport.ReadTimeout
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		hub:        NewHub(logger.With(zap.String("component", "hub")), metrics, tracer),
		library:    library.New(cfg.Host.ProjectsDir, logger),
		pages:      newPageRenderer(),
		envelopes:  utils.NewEnvelopeValidator(utils.MaxEnvelopeSize),
		hostType:   hostType,
		ws:         ws,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		tracer:     tracer,
		started:    time.Now(),
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Boot pages
	router.GET("/", s.Root)
	router.GET("/project/:id", s.ProjectPage)

	// Renderer channel
	router.GET("/ws", middleware.GlobalRateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             50,
	}), s.serveWS)

	// Inspection
	router.GET("/health", s.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/projects", s.ListProjects)
	router.GET("/windows", s.ListWindows)
	router.GET("/windows/:id", s.GetWindow)
	router.POST("/windows/:id/envelopes", s.PushEnvelope)

	s.router = router
	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the window registry.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host.Host, s.config.Host.Port)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancelBase()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// Hijacked WebSocket connections are not tracked by Shutdown.
	s.cancelBase()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// acquireConn registers a window handler. It fails once Close has begun.
func (s *Server) acquireConn() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closing {
		return false
	}
	s.conns.Add(1)
	return true
}

// Close disconnects every window, waits for their handlers to return and
// then flushes the tracer. Call it after Run returns.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("Shutting down server...", zap.Int("windows", s.hub.Len()))
		s.connMu.Lock()
		s.closing = true
		s.connMu.Unlock()

		s.cancelBase()
		s.conns.Wait()
		s.tracer.Close()
		if dropped := s.tracer.Dropped(); dropped > 0 {
			s.logger.Debug("spans dropped", zap.Int64("count", dropped))
		}
		_ = s.logger.Sync()
	})
	return nil
}
