package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	client *Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one attempt against key. When denied it returns the time left
// until the next window opens.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := r.now()
	start := now.Truncate(r.window)
	redisKey := fmt.Sprintf("rate_limit:%s:%d", key, start.Unix())

	pipe := r.client.rdb.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window+(10*time.Second))

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("redis pipeline error: %w", err)
	}

	if incr.Val() > int64(r.limit) {
		return false, start.Add(r.window).Sub(now), nil
	}

	return true, 0, nil
}
