// Package cache keeps the latest Now Queue in Redis so out-of-process
// readers (the dashboard, other shells) can show it without hitting the
// engine.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/commands"
)

const queueKey = "nowqueue:current"

// ErrQueueNotCached is returned when no queue has been cached yet or the
// entry has expired.
var ErrQueueNotCached = errors.New("no queue in cache")

// RedisQueueCache stores the serialized queue under a fixed key with a
// TTL: a stale queue is worse than no queue.
type RedisQueueCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisQueueCache creates the cache. A zero ttl defaults to one hour.
func NewRedisQueueCache(client *redis.Client, ttl time.Duration) *RedisQueueCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisQueueCache{client: client, ttl: ttl}
}

// Put stores the queue, replacing any previous entry.
func (c *RedisQueueCache) Put(ctx context.Context, queue *commands.NowQueue) error {
	body, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}
	if err := c.client.Set(ctx, queueKey, body, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache queue: %w", err)
	}
	return nil
}

// Get retrieves the cached queue.
func (c *RedisQueueCache) Get(ctx context.Context) (*commands.NowQueue, error) {
	body, err := c.client.Get(ctx, queueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached queue: %w", err)
	}
	var queue commands.NowQueue
	if err := json.Unmarshal(body, &queue); err != nil {
		return nil, fmt.Errorf("failed to decode cached queue: %w", err)
	}
	return &queue, nil
}
