package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/queue"
)

type scheduled struct {
	task  *queue.Task
	delay time.Duration
}

type recordingScheduler struct {
	calls []scheduled
	err   error
}

func (s *recordingScheduler) Enqueue(_ context.Context, task *queue.Task, delay time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, scheduled{task: task, delay: delay})
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestController_Backoff(t *testing.T) {
	c := NewController(&recordingScheduler{}, 2, 15*time.Second, discard())
	assert.Equal(t, 15*time.Second, c.Backoff(0))
	assert.Equal(t, 30*time.Second, c.Backoff(1))
	assert.Equal(t, 60*time.Second, c.Backoff(2))
	assert.Equal(t, 15*time.Second, c.Backoff(-3))
}

func TestController_BackoffSaturates(t *testing.T) {
	c := NewController(&recordingScheduler{}, 64, 15*time.Second, discard())
	for _, attempt := range []int{13, 30, 40, 63, 1000} {
		assert.Equal(t, MaxBackoff, c.Backoff(attempt), "attempt %d", attempt)
	}
	assert.Equal(t, 15*time.Second<<12, c.Backoff(12))
}

func TestController_RetryUntilBudgetIsSpent(t *testing.T) {
	s := &recordingScheduler{}
	c := NewController(s, 2, 15*time.Second, discard())
	task := queue.NewTask("propose_downstream", &core.Event{Type: core.EventRelease}, nil, nil)
	reason := core.ErrArtifactUnavailable

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := c.Retry(context.Background(), task, reason)
		require.NoError(t, err)
		require.True(t, ok, "attempt %d", attempt)
		task = s.calls[len(s.calls)-1].task
	}

	ok, err := c.Retry(context.Background(), task, reason)
	require.NoError(t, err)
	assert.False(t, ok, "the third failure is terminal")

	require.Len(t, s.calls, 2)
	assert.Equal(t, 15*time.Second, s.calls[0].delay)
	assert.Equal(t, 30*time.Second, s.calls[1].delay)
	assert.Equal(t, 2, s.calls[1].task.Attempt)
	assert.Equal(t, s.calls[0].task.ID, s.calls[1].task.ID)
}

func TestController_NegativeBudgetNeverRetries(t *testing.T) {
	s := &recordingScheduler{}
	c := NewController(s, -1, time.Second, discard())
	assert.Equal(t, 0, c.MaxAttempts())

	ok, err := c.Retry(context.Background(), queue.NewTask("x", &core.Event{}, nil, nil), errors.New("boom"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.calls)
}

func TestController_SchedulerFailure(t *testing.T) {
	s := &recordingScheduler{err: errors.New("redis down")}
	c := NewController(s, 3, time.Second, discard())

	ok, err := c.Retry(context.Background(), queue.NewTask("x", &core.Event{}, nil, nil), errors.New("boom"))
	assert.False(t, ok)
	assert.ErrorContains(t, err, "redis down")
}

func TestBinding_SchedulesOncePerExecution(t *testing.T) {
	s := &recordingScheduler{}
	c := NewController(s, 3, time.Second, discard())
	task := queue.NewTask("propose_downstream", &core.Event{}, nil, nil)

	b := c.Bind(task)
	var r core.Retrier = b
	assert.Equal(t, 0, r.Attempt())
	assert.False(t, b.Scheduled())

	ok, err := r.Retry(context.Background(), core.ErrArtifactUnavailable)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Retry(context.Background(), core.ErrArtifactUnavailable)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, b.Scheduled())
	assert.Len(t, s.calls, 1)
}
