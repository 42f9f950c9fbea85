// Package jobs selects the handlers an event needs, queues them as units of
// work and runs the worker pool that executes them.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/queue"
)

// dispatcher implements core.JobDispatcher and manages a pool of worker goroutines
// consuming units of work from the task queue.
type dispatcher struct {
	processor  *Processor         // Turns events into queued tasks.
	runner     *Runner            // Executes dequeued tasks.
	queue      queue.Queue        // Carries tasks between intake and workers.
	maxWorkers int                // Number of concurrent workers.
	wg         sync.WaitGroup     // Tracks active workers for graceful shutdown.
	ctx        context.Context    // Lifetime of the workers.
	cancel     context.CancelFunc // Stops workers blocked on an empty queue.
	logger     *slog.Logger       // Logger instance for the dispatcher.
}

// Dispatcher is a core.JobDispatcher that can be stopped.
type Dispatcher interface {
	core.JobDispatcher
	Stop()
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(processor *Processor, runner *Runner, q queue.Queue, maxWorkers int, logger *slog.Logger) Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &dispatcher{
		processor:  processor,
		runner:     runner,
		queue:      q,
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process tasks from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// Bounds of the pause after a failed dequeue, e.g. while Redis is unreachable.
const (
	minDequeueBackoff = 100 * time.Millisecond
	maxDequeueBackoff = 10 * time.Second
)

// startWorker processes tasks until the queue is closed and drained.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting task worker", "id", workerID)

	backoff := minDequeueBackoff
	for {
		task, err := d.queue.Dequeue(d.ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || d.ctx.Err() != nil {
				break
			}
			d.logger.Error("failed to dequeue task", "worker_id", workerID, "retry_in", backoff, "error", err)
			if !d.pause(backoff) {
				break
			}
			backoff = min(backoff*2, maxDequeueBackoff)
			continue
		}
		backoff = minDequeueBackoff
		d.processTask(workerID, task)
	}

	d.logger.Info("shutting down task worker", "id", workerID)
}

// pause waits for delay and reports false when the dispatcher is stopping.
func (d *dispatcher) pause(delay time.Duration) bool {
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-d.ctx.Done():
		return false
	}
}

// processTask logs and runs one unit of work.
func (d *dispatcher) processTask(workerID int, task *queue.Task) {
	d.logger.Info("worker processing task",
		"worker_id", workerID,
		"task", task.Name,
		"task_id", task.ID,
		"attempt", task.Attempt,
		"repo", task.Event.RepoFullName,
	)
	d.runner.Run(d.ctx, task)
}

// Dispatch selects the handlers for event and queues them for the workers.
func (d *dispatcher) Dispatch(ctx context.Context, event *core.Event) ([]*core.TaskResults, error) {
	d.logger.Info("processing event", "type", event.Type, "repo", event.RepoFullName)
	return d.processor.ProcessMessage(ctx, event)
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for tasks to finish")
	if err := d.queue.Close(); err != nil {
		d.logger.Warn("failed to close task queue", "error", err)
	}
	d.wg.Wait()
	d.cancel()
	d.logger.Info("all tasks have finished")
}
