package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/pkg/redis"
	"github.com/chatinsight/core/internal/pkg/response"
)

const rateLimitWindow = time.Minute

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	// Allow records one request for key and reports whether it is within
	// the limit, plus how long until the current window ends.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RedisLimiter shares counters between instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	max    int64
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, requestsPerMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, max: int64(requestsPerMinute), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	window := now.Unix() / int64(rateLimitWindow/time.Second)
	count, err := l.client.IncrWindow(ctx, fmt.Sprintf("rate_limit:%s:%d", key, window), rateLimitWindow+time.Second)
	if err != nil {
		return true, 0, err
	}
	return count <= l.max, untilNextWindow(now), nil
}

// MemoryLimiter keeps counters in process.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	now     func() time.Time
	window  int64
	counter map[string]int
}

func NewMemoryLimiter(requestsPerMinute int) *MemoryLimiter {
	return &MemoryLimiter{max: requestsPerMinute, now: time.Now, counter: make(map[string]int)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window := now.Unix() / int64(rateLimitWindow/time.Second)
	if window != l.window {
		l.window = window
		l.counter = make(map[string]int)
	}
	l.counter[key]++
	return l.counter[key] <= l.max, untilNextWindow(now), nil
}

func untilNextWindow(now time.Time) time.Duration {
	return now.Truncate(rateLimitWindow).Add(rateLimitWindow).Sub(now)
}

// RateLimit rejects clients that exceed the limiter's quota. Clients are keyed
// by gin's ClientIP, so the engine's trusted proxies decide whether
// X-Forwarded-For counts. Limiter errors let the request through.
func RateLimit(l Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		if ip == "" {
			c.Next()
			return
		}

		ok, retry, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			secs := int(retry.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			response.TooManyRequests(c, "Rate limit exceeded. Try again later.")
			return
		}
		c.Next()
	}
}

// clientIP honours forwarding headers only from the engine's trusted proxies.
func clientIP(c *gin.Context) string {
	if c.Request.RemoteAddr == "" {
		return ""
	}
	return c.ClientIP()
}
