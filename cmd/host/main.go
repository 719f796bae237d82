package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/viewsync/internal/hostserver"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/config"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	flag.StringVar(&cfg.Host.Port, "port", cfg.Host.Port, "Server port")
	flag.StringVar(&cfg.Host.Host, "host", cfg.Host.Host, "Listen address")
	flag.StringVar(&cfg.Host.HostType, "host-type", cfg.Host.HostType, "Host type announced to renderers (browser, node)")
	flag.StringVar(&cfg.Host.ProjectsDir, "projects", cfg.Host.ProjectsDir, "Project library directory")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development, "host")
	defer func() { _ = logger.Sync() }()

	srv, err := hostserver.NewServer(cfg, logger.Component("host"))
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if err := g.Wait(); err != nil {
		logger.Error("Server error", zap.Error(err))
		_ = srv.Close()
		os.Exit(1)
	}
	logger.Info("Shut down gracefully")
	_ = srv.Close()
}
