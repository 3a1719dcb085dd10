package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/issues/config"
	"github.com/ncobase/issues/handler"
	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/logging/observes"
	"github.com/ncobase/issues/version"
	"github.com/sirupsen/logrus"
)

// App represents the API server.
type App struct {
	config   *config.Config
	observes *config.Observes
	logger   *logger.Logger
	engine   *gin.Engine
	server   *http.Server
}

// NewApp creates a new application instance.
func NewApp(
	cfg *config.Config,
	obs *config.Observes,
	logger *logger.Logger,
	h *handler.Handler,
) *App {
	// Set Gin mode
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.Environment)
	}

	return &App{
		config:   cfg,
		observes: obs,
		logger:   logger,
		engine:   handler.NewEngine(h, cfg, logger),
	}
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx := context.Background()

	shutdownTracer, flushSentry, err := a.setupObserves()
	if err != nil {
		return err
	}
	defer flushSentry()
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			a.logger.Error(ctx, "Failed to shut down tracer", "error", err)
		}
	}()

	a.config.Watch(func(next *config.Config) {
		if next.Logger == nil {
			return
		}
		a.logger.SetLevel(logrus.Level(next.Logger.Level))
		a.logger.Info(ctx, "Config reloaded", "logger.level", next.Logger.Level)
	})

	addr := a.config.Addr()
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "Starting server", "addr", addr, "version", version.Version)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.logger.Error(ctx, "Server failed", "error", err)
		return err
	case <-quit:
	}

	a.logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(ctx, "Server forced to shutdown", "error", err)
		return err
	}

	a.logger.Info(ctx, "Server exited")
	return nil
}

func (a *App) setupObserves() (func(context.Context) error, func(), error) {
	noop := func(context.Context) error { return nil }
	if a.observes == nil {
		return noop, func() {}, nil
	}

	info := version.GetVersionInfo()
	shutdown := noop
	if t := a.observes.Tracer; t != nil {
		var err error
		shutdown, err = observes.NewTracer(&observes.TracerOption{
			Endpoint:      t.Endpoint,
			Name:          a.config.AppName,
			Version:       info.Version,
			Revision:      info.Revision,
			Environment:   a.config.Environment,
			SamplingRate:  t.SamplingRate,
			BatchTimeout:  t.BatchTimeout,
			ExportTimeout: t.ExportTimeout,
		})
		if err != nil {
			return noop, nil, err
		}
	}

	flush := func() {}
	if s := a.observes.Sentry; s != nil {
		environment, release := s.Environment, s.Release
		if environment == "" {
			environment = a.config.Environment
		}
		if release == "" {
			release = info.Version
		}
		var err error
		flush, err = observes.NewSentry(&observes.SentryOptions{
			Dsn:         s.Dsn,
			Name:        a.config.AppName,
			Release:     release,
			Environment: environment,
		})
		if err != nil {
			_ = shutdown(context.Background())
			return noop, nil, err
		}
	}

	return shutdown, flush, nil
}
