package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPollInterval = time.Second

// RedisQueue keeps ready tasks in a list and delayed tasks in a sorted set
// scored by the time they become ready. Any worker may promote due tasks;
// ZREM decides which one wins.
type RedisQueue struct {
	client       redis.UniversalClient
	readyKey     string
	delayedKey   string
	pollInterval time.Duration
	closed       atomic.Bool
}

// NewRedisQueue creates a queue stored under the given key prefix.
func NewRedisQueue(client redis.UniversalClient, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "build-warden:tasks"
	}
	return &RedisQueue{
		client:       client,
		readyKey:     prefix + ":ready",
		delayedKey:   prefix + ":delayed",
		pollInterval: defaultPollInterval,
	}
}

// Enqueue implements Queue.
func (q *RedisQueue) Enqueue(ctx context.Context, task *Task, delay time.Duration) error {
	if q.closed.Load() {
		return ErrClosed
	}
	now := time.Now()
	task.EnqueuedAt = now
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if delay <= 0 {
		if err := q.client.LPush(ctx, q.readyKey, data).Err(); err != nil {
			return fmt.Errorf("redis lpush: %w", err)
		}
		return nil
	}

	runAt := now.Add(delay).UnixMilli()
	if err := q.client.ZAdd(ctx, q.delayedKey, redis.Z{Score: float64(runAt), Member: data}).Err(); err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}
	return nil
}

// Dequeue implements Queue.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Task, error) {
	for {
		if q.closed.Load() {
			return nil, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := q.promoteDue(ctx); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(ctx, q.pollInterval, q.readyKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("redis brpop: %w", err)
		}
		// BRPOP returns [key, value].
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return nil, fmt.Errorf("unmarshal task: %w", err)
		}
		return &task, nil
	}
}

func (q *RedisQueue) promoteDue(ctx context.Context) error {
	due, err := q.client.ZRangeByScore(ctx, q.delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(time.Now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("redis zrangebyscore: %w", err)
	}
	for _, member := range due {
		removed, err := q.client.ZRem(ctx, q.delayedKey, member).Result()
		if err != nil {
			return fmt.Errorf("redis zrem: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.readyKey, member).Err(); err != nil {
			return fmt.Errorf("redis lpush: %w", err)
		}
	}
	return nil
}

// Len returns the number of ready and delayed tasks.
func (q *RedisQueue) Len(ctx context.Context) (ready, delayed int64, err error) {
	ready, err = q.client.LLen(ctx, q.readyKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis llen: %w", err)
	}
	delayed, err = q.client.ZCard(ctx, q.delayedKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis zcard: %w", err)
	}
	return ready, delayed, nil
}

// Close stops the queue. Stored tasks stay in Redis for the next process.
func (q *RedisQueue) Close() error {
	q.closed.Store(true)
	return nil
}
