package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// slidingWindowScript trims the sorted set to the window, admits the request
// when there is room and returns {allowed, count, oldestScoreMs}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisLimiter shares the window across processes with one sorted set per key.
type RedisLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(rdb redis.Scripter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	nowMs := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.rdb, []string{redisKeyPrefix + key},
		nowMs, l.window.Milliseconds(), l.limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	d := Decision{
		Allowed:   res[0] == 1,
		Limit:     l.limit,
		Remaining: l.limit - int(res[1]),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	d.RetryAfter = time.Duration(res[2]+l.window.Milliseconds()-nowMs) * time.Millisecond
	return d, nil
}
