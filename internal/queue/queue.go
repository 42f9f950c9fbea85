// Package queue is the task-queue runtime that carries units of work between
// the webhook intake and the workers. Delays are realized by the queue, never
// by a worker sleeping.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/build-warden/internal/core"
)

// ErrClosed is returned by Dequeue once the queue has been closed and drained.
var ErrClosed = errors.New("queue closed")

// Task is one schedulable, retryable unit of work. ID identifies the logical
// unit across re-enqueues; Attempt counts executions starting at zero.
type Task struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Event   core.Event          `json:"event"`
	Package *core.PackageConfig `json:"package,omitempty"`
	Job     *core.JobConfig     `json:"job,omitempty"`
	Attempt int                 `json:"attempt"`
	// LastError is the reason the task was last rescheduled.
	LastError  string    `json:"last_error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTask creates the first execution of a unit of work.
func NewTask(name string, event *core.Event, pkg *core.PackageConfig, job *core.JobConfig) *Task {
	return &Task{
		ID:      uuid.NewString(),
		Name:    name,
		Event:   *event,
		Package: pkg,
		Job:     job,
	}
}

// Next returns a fresh execution of the same unit of work.
func (t *Task) Next(reason error) *Task {
	next := *t
	next.Attempt = t.Attempt + 1
	next.EnqueuedAt = time.Time{}
	if reason != nil {
		next.LastError = reason.Error()
	}
	return &next
}

// Queue accepts units of work and hands them to workers.
type Queue interface {
	// Enqueue makes task available to workers after delay.
	Enqueue(ctx context.Context, task *Task, delay time.Duration) error
	// Dequeue blocks until a task is ready, ctx is done or the queue is closed.
	Dequeue(ctx context.Context) (*Task, error)
	Close() error
}
