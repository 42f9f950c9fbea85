package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/sevigo/build-warden/internal/allowlist"
	"github.com/sevigo/build-warden/internal/app"
	"github.com/sevigo/build-warden/internal/backend"
	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/db"
	"github.com/sevigo/build-warden/internal/errorsink"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
	"github.com/sevigo/build-warden/internal/jobs"
	"github.com/sevigo/build-warden/internal/logger"
	"github.com/sevigo/build-warden/internal/queue"
	"github.com/sevigo/build-warden/internal/report"
	"github.com/sevigo/build-warden/internal/retry"
	"github.com/sevigo/build-warden/internal/server"
	"github.com/sevigo/build-warden/internal/storage"
)

const memoryQueueCapacity = 1024

var AppSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	db.NewDatabase,
	github.NewProjectFactory,
	github.NewConfigLoader,
	handlers.DefaultRegistry,
	report.NewReporter,
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
	provideDBConfig,
	provideStore,
	provideQueue,
	provideRetryController,
	provideErrorSink,
	provideAllowlist,
	provideHelperFactory,
	provideHandlerDeps,
	provideProcessor,
	provideRunner,
	provideDispatcher,
	provideServer,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	return cfg.Logging.Writer()
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(loggerConfig, writer)
	slog.SetDefault(l)
	return l
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideStore(conn *db.DB) storage.Store {
	return storage.NewStore(conn.DB)
}

// provideQueue opens the task queue selected by queue.backend.
func provideQueue(ctx context.Context, cfg *config.Config, logger *slog.Logger) (queue.Queue, func(), error) {
	switch cfg.Queue.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, func() {}, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis task queue", "addr", cfg.Redis.Addr)
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		return queue.NewRedisQueue(client, ""), cleanup, nil
	default:
		logger.Info("using in-memory task queue")
		return queue.NewMemoryQueue(memoryQueueCapacity), func() {}, nil
	}
}

func provideRetryController(q queue.Queue, cfg *config.Config, logger *slog.Logger) *retry.Controller {
	return retry.NewController(q, cfg.Queue.RetryLimit, cfg.Queue.RetryBaseDelay, logger)
}

func provideErrorSink(cfg *config.Config, logger *slog.Logger) core.ErrorSink {
	return errorsink.New(cfg.SentryDSN, logger)
}

func provideAllowlist(store storage.Store, cfg *config.Config, logger *slog.Logger) *allowlist.Service {
	return allowlist.NewService(store, allowlist.NewVerifier(cfg.FAS), logger)
}

func provideHelperFactory(cfg *config.Config, store storage.Store, logger *slog.Logger) *backend.Factory {
	return backend.NewFactory(cfg, store, logger)
}

func provideHandlerDeps(
	cfg *config.Config,
	projects *github.ProjectFactory,
	helpers *backend.Factory,
	store storage.Store,
	allow *allowlist.Service,
	reporter *report.Reporter,
	sink core.ErrorSink,
	logger *slog.Logger,
) *handlers.Deps {
	return &handlers.Deps{
		Config:        cfg,
		Projects:      projects,
		Helpers:       helpers,
		Installations: store,
		Builds:        store,
		Allowlist:     allow,
		Reporter:      reporter,
		Sink:          sink,
		Logger:        logger,
	}
}

func provideProcessor(
	cfg *config.Config,
	registry *handlers.Registry,
	deps *handlers.Deps,
	configs *github.ConfigLoader,
	q queue.Queue,
	store storage.Store,
	logger *slog.Logger,
) *jobs.Processor {
	return jobs.NewProcessor(cfg, registry, deps, configs, q, store, logger)
}

func provideRunner(
	registry *handlers.Registry,
	deps *handlers.Deps,
	rc *retry.Controller,
	store storage.Store,
	logger *slog.Logger,
) *jobs.Runner {
	return jobs.NewRunner(registry, deps, rc, store, logger)
}

func provideDispatcher(
	processor *jobs.Processor,
	runner *jobs.Runner,
	q queue.Queue,
	cfg *config.Config,
	logger *slog.Logger,
) jobs.Dispatcher {
	return jobs.NewDispatcher(processor, runner, q, cfg.Queue.MaxWorkers, logger)
}

func provideServer(
	ctx context.Context,
	cfg *config.Config,
	dispatcher jobs.Dispatcher,
	store storage.Store,
	logger *slog.Logger,
) *server.Server {
	return server.NewServer(ctx, cfg, dispatcher, store, logger)
}
