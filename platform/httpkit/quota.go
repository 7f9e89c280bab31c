package httpkit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"leadintel_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// QuotaStore is the subset of redis operations the quota limiter needs.
type QuotaStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// QuotaLimiter enforces a fixed-window request quota shared across instances.
// Scoring endpoints are expensive (LLM calls), so the per-IP token bucket
// alone is not enough once the API runs on more than one replica.
type QuotaLimiter struct {
	store  QuotaStore
	window time.Duration
	limit  int64
	prefix string
	log    *logger.Logger
}

// NewQuotaLimiter creates a limiter allowing limit requests per window per client.
func NewQuotaLimiter(store QuotaStore, window time.Duration, limit int64, prefix string, log *logger.Logger) *QuotaLimiter {
	if prefix == "" {
		prefix = "quota"
	}
	return &QuotaLimiter{
		store:  store,
		window: window,
		limit:  limit,
		prefix: prefix,
		log:    log,
	}
}

// Allow records one request for the client and reports whether it is within quota.
// On store errors the request is allowed; quota is throttling, not auth.
func (q *QuotaLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	bucket := time.Now().Unix() / int64(q.window.Seconds())
	key := fmt.Sprintf("%s:%s:%d", q.prefix, clientKey, bucket)

	count, err := q.store.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		// First hit in the window owns the expiry.
		q.store.Expire(ctx, key, q.window+time.Second)
	}

	return count <= q.limit, nil
}

// Quota returns a middleware enforcing the shared quota, keyed by client IP.
func (q *QuotaLimiter) Quota() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		ok, err := q.Allow(c.Request.Context(), ip)
		if err != nil && q.log != nil {
			q.log.Error("quota store unavailable", "error", err)
		}
		if !ok {
			if q.log != nil {
				q.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(q.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "scoring quota exceeded",
			})
			return
		}

		c.Next()
	}
}
