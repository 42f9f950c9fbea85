// Package app initializes and orchestrates the main components of the Build Warden application.
// It wires together the configuration, server, and the task workers.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/jobs"
	"github.com/sevigo/build-warden/internal/server"
)

// flusher is implemented by error sinks that buffer events.
type flusher interface {
	Flush() bool
}

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	dispatcher jobs.Dispatcher
	sink       core.ErrorSink
	logger     *slog.Logger
}

// NewApp sets up the application with all its dependencies.
func NewApp(
	ctx context.Context,
	cfg *config.Config,
	srv *server.Server,
	dispatcher jobs.Dispatcher,
	sink core.ErrorSink,
	logger *slog.Logger,
) *App {
	logger.Info("Build Warden application initialized",
		"queue_backend", cfg.Queue.Backend,
		"max_workers", cfg.Queue.MaxWorkers,
		"retry_limit", cfg.Queue.RetryLimit,
	)
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting Build Warden",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Queue.MaxWorkers)

	err := a.server.Start()
	if err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down Build Warden services")

	// Stop the HTTP server first to prevent new incoming events.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the workers, allowing in-flight tasks to finish.
	a.dispatcher.Stop()

	if f, ok := a.sink.(flusher); ok && !f.Flush() {
		a.logger.Warn("not all tracked errors were delivered")
	}

	if serverErr != nil {
		a.logger.Error("Build Warden stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("Build Warden stopped successfully")
	return nil
}
