package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Per-window limits.
const (
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	APIMaxRequests      = 100
	CartMaxWrites       = 20
	SearchMaxRequests   = 30

	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	APIWindow        = time.Minute
)

// Counter is a fixed-window counter; cache.Counter implements it over Redis.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) time.Duration
	Reset(ctx context.Context, key string) error
}

// RateLimiter builds gin middlewares over a shared counter. When the counter
// backend fails, requests are let through.
type RateLimiter struct {
	counter Counter
	log     *zap.Logger
}

func NewRateLimiter(counter Counter, log *zap.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, log: log}
}

// Limit allows max requests per window for each key returned by keyFn. An
// empty key skips limiting.
func (l *RateLimiter) Limit(prefix string, max int64, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := keyFn(c)
		if id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := prefix + ":" + id
		n, err := l.counter.Increment(ctx, key, window)
		if err != nil {
			l.log.Warn("rate limit counter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		if n > max {
			l.reject(c, key, window)
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max-n, 10))
		c.Next()
	}
}

// LimitFailures only counts requests answered with 401. Once max failures are
// recorded the key is blocked until the window expires; a 200 clears it.
func (l *RateLimiter) LimitFailures(prefix string, max int64, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := keyFn(c)
		if id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := prefix + ":" + id
		n, err := l.counter.Count(ctx, key)
		if err != nil {
			l.log.Warn("rate limit counter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if n >= max {
			l.reject(c, key, window)
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			if _, err := l.counter.Increment(ctx, key, window); err != nil {
				l.log.Warn("failed to record attempt", zap.String("key", key), zap.Error(err))
			}
		case http.StatusOK:
			if err := l.counter.Reset(ctx, key); err != nil {
				l.log.Warn("failed to reset attempts", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

func (l *RateLimiter) reject(c *gin.Context, key string, window time.Duration) {
	retry := l.counter.TTL(c.Request.Context(), key)
	if retry <= 0 {
		retry = window
	}
	secs := int(math.Ceil(retry.Seconds()))
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"code":    http.StatusTooManyRequests,
		"message": fmt.Sprintf("Too many requests, retry in %d seconds", secs),
	})
}

func ByIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUser keys on the authenticated user; it must run after AuthRequired.
func ByUser(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func (l *RateLimiter) API() gin.HandlerFunc {
	return l.Limit("api_requests", APIMaxRequests, APIWindow, ByIP)
}

func (l *RateLimiter) Login() gin.HandlerFunc {
	return l.LimitFailures("login_attempts", LoginMaxAttempts, LoginCooldown, ByIP)
}

func (l *RateLimiter) Register() gin.HandlerFunc {
	return l.Limit("register_attempts", RegisterMaxAttempts, RegisterCooldown, ByIP)
}

func (l *RateLimiter) Cart() gin.HandlerFunc {
	return l.Limit("cart_writes", CartMaxWrites, time.Minute, ByUser)
}

func (l *RateLimiter) Search() gin.HandlerFunc {
	return l.Limit("search_requests", SearchMaxRequests, time.Minute, ByIP)
}
