package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
)

// keyFunc picks the bucket a request is charged to.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP charges signed-in visitors per account ("user:<id>", set by
// Session) and everyone else per client IP ("ip:<addr>").
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(userIDKey); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per key. Buckets idle for ttl
// are swept every sweepEvery lookups.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64

	ttl        time.Duration
	sweepEvery uint64
	now        func() time.Time
}

// NewRateLimiter builds a limiter refilling rps tokens per second with the
// given burst (coerced to at least 1).
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	return &RateLimiter{
		rps:        rate.Limit(rps),
		burst:      max(burst, 1),
		keyFn:      keyFn,
		visitors:   make(map[string]*visitor),
		ttl:        10 * time.Minute,
		sweepEvery: 5000,
		now:        time.Now,
	}
}

func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Sweep before the lookup so a stale bucket for key is dropped too.
	rl.lookups++
	if rl.lookups >= rl.sweepEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// retryAfter is the whole number of seconds until one token refills.
func (rl *RateLimiter) retryAfter() string {
	if rl.rps <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/float64(rl.rps)))))
}

// Handler rejects requests over the limit with 429, a Retry-After header and
// the standard error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", rl.retryAfter())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "too_many_requests",
			"message":    i18n.T(c, i18n.KeyTooManyRequests),
		})
	}
}
