package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"idle-fm-api/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter controls how frequently a caller may perform an action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit rejects callers, keyed by client IP, that exceed limiter.
func RateLimit(limiter RateLimiter, retryAfter time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter tracks request rates per key in process with expiration.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewIPRateLimiter allows up to requests events per window plus burst,
// forgetting keys idle for longer than ttl.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) Allow(_ context.Context, key string) bool {
	if key == "" {
		key = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	for k, other := range l.visitors {
		if now.Sub(other.lastSeen) > l.ttl {
			delete(l.visitors, k)
		}
	}
	return v.limiter.AllowN(now, 1)
}

// WindowCounter is implemented by cache.WindowCounter.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error)
}

type sharedRateLimiter struct {
	counter  WindowCounter
	requests int64
	window   time.Duration
	now      func() time.Time
}

// NewSharedRateLimiter allows requests hits per fixed window, counted in a
// store shared by all instances. Store failures let the request through.
func NewSharedRateLimiter(counter WindowCounter, requests int, window time.Duration) RateLimiter {
	return &sharedRateLimiter{counter: counter, requests: int64(requests), window: window, now: time.Now}
}

func (l *sharedRateLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.counter.Hit(ctx, key, l.window, l.now())
	if err != nil {
		logger.WithContext(ctx).WithField("error", err).Warn("Rate limit store unavailable, allowing request")
		return true
	}
	return count <= l.requests
}
