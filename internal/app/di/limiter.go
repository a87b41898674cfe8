package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"vivimap/internal/config"
	"vivimap/internal/shared/ratelimiter"
)

// NewAuthLimiter shares the auth rate limit across instances through Redis
// when available. The in-process fallback is pruned every window until ctx
// is done.
func NewAuthLimiter(ctx context.Context, cfg *config.Config, rdb *redis.Client) ratelimiter.Limiter {
	limit, window := cfg.Auth.RateLimitRequests, cfg.RateLimitWindow()
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, limit, window)
	}

	l := ratelimiter.NewMemoryLimiter(limit, window)
	go func() {
		t := time.NewTicker(window)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Prune()
			}
		}
	}()
	return l
}
