// Package cache keeps short-lived derived values in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultUnreadTTL = 5 * time.Minute

// UnreadCounter caches the unread notification count per user. A nil client
// turns every call into a miss, so callers need no special casing.
type UnreadCounter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUnreadCounter(client *redis.Client, ttl time.Duration) *UnreadCounter {
	if ttl <= 0 {
		ttl = DefaultUnreadTTL
	}
	return &UnreadCounter{client: client, ttl: ttl}
}

func UnreadKey(userID uint) string {
	return fmt.Sprintf("vidshelf:notifications:unread:%d", userID)
}

func (c *UnreadCounter) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached count; the bool is false on a miss
func (c *UnreadCounter) Get(ctx context.Context, userID uint) (int64, bool, error) {
	if !c.enabled() {
		return 0, false, nil
	}
	n, err := c.client.Get(ctx, UnreadKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (c *UnreadCounter) Set(ctx context.Context, userID uint, count int64) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Set(ctx, UnreadKey(userID), count, c.ttl).Err()
}

func (c *UnreadCounter) Invalidate(ctx context.Context, userID uint) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, UnreadKey(userID)).Err()
}
