package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		KeyPrefix:         "opinion:ratelimit:",
		Message:           "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
	}
}

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1}
end
return {0, 0}
`)

// limiter decides whether key may proceed; remaining is the budget left in the window
type limiter interface {
	allow(ctx context.Context, key string, limit int) (allowed bool, remaining int, err error)
}

type redisLimiter struct {
	client *redis.Client
}

func (l *redisLimiter) allow(ctx context.Context, key string, limit int) (bool, int, error) {
	result, err := rateLimitScript.Run(ctx, l.client, []string{key},
		limit, rateLimitWindow.Milliseconds(), time.Now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	return result[0] == 1, int(result[1]), nil
}

// memoryLimiter fixed window counter for single-instance deployments without Redis
type memoryLimiter struct {
	mu    sync.Mutex
	store *gocache.Cache
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{store: gocache.New(rateLimitWindow, 2*rateLimitWindow)}
}

func (l *memoryLimiter) allow(_ context.Context, key string, limit int) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	if v, ok := l.store.Get(key); ok {
		count = v.(int)
	}
	if count >= limit {
		return false, 0, nil
	}
	if count == 0 {
		l.store.Set(key, 1, rateLimitWindow)
	} else if _, err := l.store.IncrementInt(key, 1); err != nil {
		return false, 0, err
	}
	return true, limit - count - 1, nil
}

// RateLimit limits requests per actor (or client IP before login).
// Redis errors fail open.
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	var l limiter
	if redisClient != nil {
		l = &redisLimiter{client: redisClient}
	} else {
		l = newMemoryLimiter()
	}
	return rateLimit(l, cfg)
}

func rateLimit(l limiter, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		subject := GetEmployeeID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := cfg.KeyPrefix + c.FullPath() + ":" + subject

		allowed, remaining, err := l.allow(c.Request.Context(), key, cfg.RequestsPerMinute)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rateLimitWindow.Seconds())))
			common.ErrorResponse(c, http.StatusTooManyRequests, cfg.Message, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
