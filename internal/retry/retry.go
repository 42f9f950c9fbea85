// Package retry re-dispatches units of work that hit a transient failure.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/build-warden/internal/queue"
)

// Scheduler is the part of the queue runtime the controller needs.
type Scheduler interface {
	Enqueue(ctx context.Context, task *queue.Task, delay time.Duration) error
}

// Controller decides whether a failed unit of work gets another execution and
// schedules it with exponential backoff.
type Controller struct {
	scheduler   Scheduler
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewController creates a controller allowing maxAttempts retries.
func NewController(scheduler Scheduler, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Controller {
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	return &Controller{
		scheduler:   scheduler,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// MaxAttempts returns the retry bound.
func (c *Controller) MaxAttempts() int {
	return c.maxAttempts
}

// MaxBackoff caps the delay before a retry.
const MaxBackoff = 24 * time.Hour

// Backoff returns base * 2^attempt, saturating at MaxBackoff.
func (c *Controller) Backoff(attempt int) time.Duration {
	d := c.baseDelay
	if d <= 0 {
		return 0
	}
	for range max(attempt, 0) {
		if d >= MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return min(d, MaxBackoff)
}

// Retry schedules the next execution of task unless its budget is spent.
// It returns false when the failure has to be treated as terminal.
func (c *Controller) Retry(ctx context.Context, task *queue.Task, reason error) (bool, error) {
	if task.Attempt >= c.maxAttempts {
		c.logger.Info("retry budget exhausted",
			"task", task.Name,
			"task_id", task.ID,
			"attempt", task.Attempt,
			"error", reason,
		)
		return false, nil
	}

	delay := c.Backoff(task.Attempt)
	next := task.Next(reason)
	if err := c.scheduler.Enqueue(ctx, next, delay); err != nil {
		return false, fmt.Errorf("failed to schedule retry of %s: %w", task.Name, err)
	}
	c.logger.Info("retry scheduled",
		"task", task.Name,
		"task_id", task.ID,
		"attempt", next.Attempt,
		"delay", delay,
		"error", reason,
	)
	return true, nil
}

// Bind returns the core.Retrier view of task for the handler running it.
func (c *Controller) Bind(task *queue.Task) *Binding {
	return &Binding{controller: c, task: task}
}

// Binding ties a controller to one execution of a task.
type Binding struct {
	controller *Controller
	task       *queue.Task
	scheduled  bool
}

// Attempt implements core.Retrier.
func (b *Binding) Attempt() int {
	return b.task.Attempt
}

// Retry implements core.Retrier. A single execution schedules at most one
// retry; later calls report the retry as already scheduled.
func (b *Binding) Retry(ctx context.Context, reason error) (bool, error) {
	if b.scheduled {
		return true, nil
	}
	ok, err := b.controller.Retry(ctx, b.task, reason)
	if ok {
		b.scheduled = true
	}
	return ok, err
}

// Scheduled reports whether this execution handed its work back to the queue.
func (b *Binding) Scheduled() bool {
	return b.scheduled
}
