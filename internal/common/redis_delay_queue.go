package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"just-landed/tracker/internal/constants"
)

// DelayTask is a deferred unit of work: a re-track checkpoint before a
// reminder fires, or a delayed alert callback to reconcile.
type DelayTask struct {
	ID      string             `json:"id"`
	Kind    constants.TaskKind `json:"kind"`
	Payload json.RawMessage    `json:"payload"`
}

// RedisDelayQueue schedules DelayTasks on a sorted set scored by their due
// time. Tasks are claimed by removal, so each executes at most once even
// with multiple pollers.
type RedisDelayQueue struct {
	client *redis.Client
	key    string
}

func NewRedisDelayQueue(client *redis.Client) *RedisDelayQueue {
	return &RedisDelayQueue{
		client: client,
		key:    "tracker:delay_queue",
	}
}

// Schedule enqueues a task to run at the given time.
func (q *RedisDelayQueue) Schedule(ctx context.Context, kind constants.TaskKind, payload interface{}, at time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := DelayTask{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: raw,
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(at.Unix()),
		Member: string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}
	return nil
}

// ClaimDue pops up to limit tasks whose due time has passed. A task is only
// returned if its removal succeeded, which is the at-most-once claim.
func (q *RedisDelayQueue) ClaimDue(ctx context.Context, now time.Time, limit int64) ([]DelayTask, error) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.Unix()),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due tasks: %w", err)
	}

	var tasks []DelayTask
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return tasks, fmt.Errorf("failed to claim task: %w", err)
		}
		if removed == 0 {
			// Another poller got there first.
			continue
		}

		var task DelayTask
		if err := json.Unmarshal([]byte(member), &task); err != nil {
			// Malformed member is already removed; skip it.
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Pending returns the number of scheduled tasks, due or not.
func (q *RedisDelayQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}
