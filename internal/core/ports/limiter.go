package ports

import "context"

// AttemptLimiter throttles repeated login attempts for a scope and key.
type AttemptLimiter interface {
	Allow(ctx context.Context, scope, key string) (bool, error)
}
