package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/build-warden/internal/core"
)

func newTestTask(name string) *Task {
	return NewTask(name, &core.Event{Type: core.EventRelease, RepoFullName: "acme/widget"}, nil, nil)
}

func TestMemoryQueue_ImmediateAndDelayed(t *testing.T) {
	q := NewMemoryQueue(4)
	defer q.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	delayed := newTestTask("delayed")
	require.NoError(t, q.Enqueue(ctx, delayed, 50*time.Millisecond))
	require.NoError(t, q.Enqueue(ctx, newTestTask("now"), 0))
	assert.Equal(t, 1, q.Pending())

	first, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "now", first.Name)

	start := time.Now()
	second, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, delayed.ID, second.ID)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 0, q.Pending())
}

func TestMemoryQueue_FullQueueRejects(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), newTestTask("a"), 0))
	assert.Error(t, q.Enqueue(context.Background(), newTestTask("b"), 0))
}

func overflowLen(q *MemoryQueue) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.overflow)
}

func TestMemoryQueue_DelayedTaskSurvivesFullQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, newTestTask("ready"), 0))
	retried := newTestTask("retried")
	require.NoError(t, q.Enqueue(ctx, retried, 10*time.Millisecond))

	// The retry comes due while the only slot is taken.
	assert.Eventually(t, func() bool { return overflowLen(q) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, q.Pending())

	first, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", first.Name)

	second, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, retried.ID, second.ID)
	assert.Equal(t, 0, q.Pending())
}

func TestMemoryQueue_CloseDrainsOverflow(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, newTestTask("ready"), 0))
	require.NoError(t, q.Enqueue(ctx, newTestTask("retried"), time.Millisecond))
	assert.Eventually(t, func() bool { return overflowLen(q) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Close())

	var names []string
	for {
		task, err := q.Dequeue(ctx)
		if errors.Is(err, ErrClosed) {
			break
		}
		require.NoError(t, err)
		names = append(names, task.Name)
	}
	assert.ElementsMatch(t, []string{"ready", "retried"}, names)
}

func TestMemoryQueue_CloseDrainsReadyTasks(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, newTestTask("ready"), 0))
	require.NoError(t, q.Enqueue(ctx, newTestTask("parked"), time.Hour))
	require.NoError(t, q.Close())

	task, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", task.Name)

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, q.Enqueue(ctx, newTestTask("late"), 0), ErrClosed)
	assert.NoError(t, q.Close(), "closing twice is harmless")
}

func TestMemoryQueue_DequeueHonorsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestTask_Next(t *testing.T) {
	task := newTestTask("propose_downstream")
	next := task.Next(errors.New("archive missing"))

	assert.Equal(t, task.ID, next.ID)
	assert.Equal(t, 1, next.Attempt)
	assert.Equal(t, "archive missing", next.LastError)
	assert.Equal(t, 0, task.Attempt, "the original execution is untouched")
	assert.NotEmpty(t, task.ID)
}
