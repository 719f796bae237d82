package main

import (
	"context"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/viewsync/internal/boot"
	"github.com/GriffinCanCode/viewsync/internal/domain/library"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/config"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/logging"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/renderer"
	"github.com/GriffinCanCode/viewsync/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	flag.StringVar(&cfg.Renderer.HostURL, "url", cfg.Renderer.HostURL, "Boot page URL")
	flag.StringVar(&cfg.Renderer.LibraryDir, "library", cfg.Renderer.LibraryDir, "Project library for node hosts")
	flag.IntVar(&cfg.History.MaxEntries, "history", cfg.History.MaxEntries, "Maximum undo entries")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development, "renderer")
	defer func() { _ = logger.Sync() }()

	location, err := url.Parse(cfg.Renderer.HostURL)
	if err != nil {
		logger.Fatal("Invalid boot page URL", zap.String("url", cfg.Renderer.HostURL), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := httpclient.New(httpclient.DefaultConfig(), logger.Component("http"))
	payload, err := boot.Fetch(ctx, client, location.String())
	if err != nil {
		// Boot with whatever survived; a dead host still gets a splash screen.
		logger.Warn("Boot payload unavailable", zap.Error(err))
	}

	tc := cfg.Transport
	session, err := renderer.Start(ctx, renderer.Options{
		Location: location,
		Payload:  payload,
		TransportConfig: transport.Config{
			Endpoint:          transport.Endpoint(location),
			QueueSize:         tc.QueueSize,
			HandshakeTimeout:  tc.HandshakeTimeout,
			WriteTimeout:      tc.WriteTimeout,
			ReadTimeout:       tc.ReadTimeout,
			PingInterval:      tc.PingInterval,
			ReconnectDelay:    tc.ReconnectDelay,
			MaxReconnectDelay: tc.MaxReconnect,
		},
		Library: library.New(cfg.Renderer.LibraryDir, logger.Component("library")),
		Viewport: renderer.Viewport{
			Width:  cfg.Renderer.ViewportWidth,
			Height: cfg.Renderer.ViewportHeight,
		},
		HistoryMax: cfg.History.MaxEntries,
		Logger:     logger.Logger,
		Metrics:    monitoring.NewMetrics(),
	})
	if err != nil {
		logger.Fatal("Failed to start renderer", zap.Error(err))
	}

	screenshots := make(chan os.Signal, 1)
	signal.Notify(screenshots, syscall.SIGUSR1)
	defer signal.Stop(screenshots)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(session.Wait)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return session.Close()
			case <-screenshots:
				session.Debug().Screenshot()
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Renderer stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Renderer stopped")
}
