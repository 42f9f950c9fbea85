package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryQueue is an in-process queue. Delayed tasks are parked on timers.
// A delayed task that comes due while the ready buffer is full waits in an
// overflow list until a worker frees a slot; it is never dropped.
type MemoryQueue struct {
	ready    chan *Task
	mu       sync.Mutex
	timers   map[*time.Timer]struct{}
	overflow []*Task
	closed   bool
	done     chan struct{}
}

// NewMemoryQueue creates a queue that holds up to capacity ready tasks.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryQueue{
		ready:  make(chan *Task, capacity),
		timers: make(map[*time.Timer]struct{}),
		done:   make(chan struct{}),
	}
}

// Enqueue implements Queue. A full queue rejects the task to give callers
// backpressure.
func (q *MemoryQueue) Enqueue(_ context.Context, task *Task, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	task.EnqueuedAt = time.Now()

	if delay <= 0 {
		return q.push(task)
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.timers, t)
		if q.closed {
			return
		}
		if len(q.overflow) > 0 || q.push(task) != nil {
			q.overflow = append(q.overflow, task)
		}
	})
	q.timers[t] = struct{}{}
	return nil
}

// push must be called with q.mu held.
func (q *MemoryQueue) push(task *Task) error {
	select {
	case q.ready <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, cannot accept task %s", task.Name)
	}
}

// Dequeue implements Queue.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*Task, error) {
	select {
	case task := <-q.ready:
		q.refill()
		return task, nil
	case <-q.done:
		// Drain what is already ready before reporting closure.
		select {
		case task := <-q.ready:
			return task, nil
		default:
			return q.popOverflow()
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// refill moves overflowed tasks into the slots freed by workers.
func (q *MemoryQueue) refill() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.overflow) > 0 {
		if err := q.push(q.overflow[0]); err != nil {
			return
		}
		q.overflow = q.overflow[1:]
	}
}

func (q *MemoryQueue) popOverflow() (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.overflow) == 0 {
		return nil, ErrClosed
	}
	task := q.overflow[0]
	q.overflow = q.overflow[1:]
	return task, nil
}

// Pending returns the number of delayed tasks not yet handed to a worker.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers) + len(q.overflow)
}

// Close stops accepting tasks and drops delayed ones.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	for t := range q.timers {
		t.Stop()
	}
	q.timers = nil
	close(q.done)
	return nil
}
