package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/handlers"
	"github.com/sevigo/build-warden/internal/queue"
	"github.com/sevigo/build-warden/internal/retry"
)

// Runner executes one unit of work: it builds the handler named by the task,
// runs it and records the outcome under the task ID.
type Runner struct {
	registry *handlers.Registry
	deps     *handlers.Deps
	retry    *retry.Controller
	tasks    TaskStore
	logger   *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(registry *handlers.Registry, deps *handlers.Deps, rc *retry.Controller, tasks TaskStore, logger *slog.Logger) *Runner {
	return &Runner{
		registry: registry,
		deps:     deps,
		retry:    rc,
		tasks:    tasks,
		logger:   logger,
	}
}

// Run executes task. It returns nil when the execution produced no outcome,
// either because it was handed back to the queue or because the handler was
// not eligible.
func (r *Runner) Run(ctx context.Context, task *queue.Task) *core.TaskResults {
	logger := r.logger.With("task", task.Name, "task_id", task.ID, "attempt", task.Attempt)
	r.record(ctx, task, core.TaskRunning, nil)

	binding := r.retry.Bind(task)
	res, err := r.execute(ctx, task, binding)

	switch {
	case errors.Is(err, core.ErrRetryScheduled) || binding.Scheduled():
		logger.Info("task handed back to the queue")
		r.record(ctx, task, core.TaskAwaitingRetry, nil)
		return nil
	case errors.Is(err, errNotEligible):
		logger.Info("task skipped, handler not eligible")
		r.record(ctx, task, core.TaskSucceeded, core.NewResults(true, "Handler not eligible, skipped."))
		return nil
	case err != nil:
		logger.Error("task failed", "error", err)
		r.deps.Sink.Capture(err, map[string]string{"task": task.Name})
		res = core.ResultsFor(false, err.Error(), task.Job, &task.Event)
	case res == nil:
		res = core.ResultsFor(true, "", task.Job, &task.Event)
	}

	state := core.TaskSucceeded
	if !res.Success {
		state = core.TaskFailed
	}
	r.record(ctx, task, state, res)
	logger.Info("task finished", "success", res.Success, "msg", res.Msg)
	return res
}

var errNotEligible = errors.New("handler not eligible")

func (r *Runner) execute(ctx context.Context, task *queue.Task, retrier core.Retrier) (res *core.TaskResults, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("handler panicked", "task", task.Name, "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("handler %s panicked: %v", task.Name, p)
		}
	}()

	reg, ok := r.registry.Get(handlers.TaskName(task.Name))
	if !ok {
		return nil, fmt.Errorf("unknown task %q", task.Name)
	}

	event := task.Event
	params := handlers.Params{
		Package: task.Package,
		Job:     task.Job,
		Event:   &event,
		Retrier: retrier,
	}
	if event.Type != core.EventInstallation {
		project, err := r.deps.Projects.ProjectForEvent(ctx, &event)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project %s: %w", event.RepoFullName, err)
		}
		params.Project = project
	}

	h, err := reg.New(r.deps, params)
	if err != nil {
		return nil, err
	}
	if !h.PreCheck() {
		return nil, errNotEligible
	}
	return h.Run(ctx)
}

func (r *Runner) record(ctx context.Context, task *queue.Task, state core.TaskState, res *core.TaskResults) {
	rec := &core.TaskRecord{
		TaskID:    task.ID,
		TaskName:  task.Name,
		State:     state,
		Attempt:   task.Attempt,
		UpdatedAt: time.Now(),
	}
	if res != nil {
		rec.Success = res.Success
		details, err := json.Marshal(res.Details())
		if err != nil {
			r.logger.Warn("failed to encode task details", "task_id", task.ID, "error", err)
		} else {
			rec.Details = details
		}
	}
	if err := r.tasks.SaveTaskRecord(ctx, rec); err != nil {
		r.logger.Error("failed to save task record", "task_id", task.ID, "state", state, "error", err)
	}
}
