package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultWindow = time.Minute

// AttemptLimiter caps login attempts per scope and key with a fixed-window
// counter in Redis.
// Key format: rl:<scope>:<key>
type AttemptLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewAttemptLimiter allows limit attempts per window. A window <= 0 means one
// minute.
func NewAttemptLimiter(client *redis.Client, limit int, window time.Duration) *AttemptLimiter {
	if window <= 0 {
		window = defaultWindow
	}
	return &AttemptLimiter{client: client, limit: int64(limit), window: window}
}

// Allow records one attempt and reports whether it is within the limit.
// The window starts with the first attempt and is not extended by later ones.
// A counter found without a TTL gets one, so a failed EXPIRE cannot turn into
// a permanent lockout.
func (l *AttemptLimiter) Allow(ctx context.Context, scope, key string) (bool, error) {
	k := l.key(scope, key)

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	}); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return incr.Val() <= l.limit, nil
}

func (l *AttemptLimiter) key(scope, key string) string {
	return fmt.Sprintf("rl:%s:%s", scope, key)
}
