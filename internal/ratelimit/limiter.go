// Package ratelimit throttles requests with a Redis sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindow trims entries older than the window, then admits the request
// when fewer than limit remain. Members are made unique with a counter.
// Returns {allowed, remaining, reset_at_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local current = redis.call('ZCARD', key)

if current < limit then
	local counter = redis.call('INCR', key .. ':seq')
	redis.call('ZADD', key, now, now .. ':' .. counter)
	local ttl = math.ceil(window_ms / 1000)
	redis.call('EXPIRE', key, ttl)
	redis.call('EXPIRE', key .. ':seq', ttl)
	return {1, limit - current - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local reset_at = 0
if oldest and #oldest >= 2 then
	reset_at = tonumber(oldest[2]) + window_ms
end
return {0, 0, reset_at}
`)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Limiter counts requests per key in Redis.
type Limiter struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// NewLimiter creates a limiter storing its windows under keyPrefix.
func NewLimiter(client *redis.Client, keyPrefix string) *Limiter {
	return &Limiter{client: client, keyPrefix: keyPrefix, now: time.Now}
}

// Allow records a request for key and reports whether it fits in the window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := l.now()
	windowMs := window.Milliseconds()

	res, err := slidingWindow.Run(ctx, l.client, []string{l.keyPrefix + key},
		now.UnixMilli(), now.Add(-window).UnixMilli(), limit, windowMs).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	resetAt := now.Add(window)
	if res[2] > 0 {
		resetAt = time.UnixMilli(res[2])
	}
	return Decision{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}

// Reset forgets every request recorded for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	k := l.keyPrefix + key
	return l.client.Del(ctx, k, k+":seq").Err()
}
