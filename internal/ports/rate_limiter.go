package ports

import (
	"context"
	"time"
)

// RateLimiter throttles job submissions per key. A denied call reports how
// long the caller should wait before retrying.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}
