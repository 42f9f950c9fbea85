// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/build-warden/internal/app"
	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/db"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
	"github.com/sevigo/build-warden/internal/report"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := provideLoggerConfig(cfg)
	logWriter := provideLogWriter(cfg)
	slogLogger := provideSlogLogger(loggerConfig, logWriter)

	// Database, migrated to the latest schema
	dbConfig := provideDBConfig(cfg)
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := provideStore(dbConn)

	// Task queue
	taskQueue, queueCleanup, err := provideQueue(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to open task queue: %w", err)
	}
	retryController := provideRetryController(taskQueue, cfg, slogLogger)

	// Handler collaborators
	projectFactory := github.NewProjectFactory(cfg, slogLogger)
	configLoader := github.NewConfigLoader(slogLogger)
	helperFactory := provideHelperFactory(cfg, store, slogLogger)
	allowlistService := provideAllowlist(store, cfg, slogLogger)
	reporter := report.NewReporter(slogLogger)
	errorSink := provideErrorSink(cfg, slogLogger)
	deps := provideHandlerDeps(cfg, projectFactory, helperFactory, store, allowlistService, reporter, errorSink, slogLogger)
	registry := handlers.DefaultRegistry()

	// Workers
	processor := provideProcessor(cfg, registry, deps, configLoader, taskQueue, store, slogLogger)
	runner := provideRunner(registry, deps, retryController, store, slogLogger)
	dispatcher := provideDispatcher(processor, runner, taskQueue, cfg, slogLogger)

	// Server
	srv := provideServer(ctx, cfg, dispatcher, store, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, dispatcher, errorSink, slogLogger)

	cleanup := func() {
		queueCleanup()
		dbCleanup()
	}

	return application, cleanup, nil
}
