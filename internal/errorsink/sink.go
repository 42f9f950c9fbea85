// Package errorsink tracks unexpected errors raised while running jobs.
package errorsink

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sevigo/build-warden/internal/core"
)

const flushTimeout = 2 * time.Second

// LogSink writes captured errors to the log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Capture implements core.ErrorSink.
func (s *LogSink) Capture(err error, tags map[string]string) {
	args := make([]any, 0, 2+2*len(tags))
	args = append(args, "error", err)
	for k, v := range tags {
		args = append(args, k, v)
	}
	s.logger.Error("unexpected error", args...)
}

// SentrySink forwards captured errors to Sentry and logs them.
type SentrySink struct {
	hub *sentry.Hub
	log *LogSink
}

// NewSentrySink creates a sink reporting to the project behind dsn.
func NewSentrySink(dsn, environment string, logger *slog.Logger) (*SentrySink, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}
	return &SentrySink{
		hub: sentry.NewHub(client, sentry.NewScope()),
		log: NewLogSink(logger),
	}, nil
}

// Capture implements core.ErrorSink.
func (s *SentrySink) Capture(err error, tags map[string]string) {
	s.log.Capture(err, tags)
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be delivered.
func (s *SentrySink) Flush() bool {
	return s.hub.Flush(flushTimeout)
}

// New returns a Sentry sink when dsn is set and a log sink otherwise. A
// broken DSN falls back to logging.
func New(dsn string, logger *slog.Logger) core.ErrorSink {
	if dsn == "" {
		return NewLogSink(logger)
	}
	sink, err := NewSentrySink(dsn, "", logger)
	if err != nil {
		logger.Warn("error tracking disabled", "error", err)
		return NewLogSink(logger)
	}
	return sink
}
