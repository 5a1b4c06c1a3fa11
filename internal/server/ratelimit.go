package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/api"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const idleBucketTTL = 3 * time.Minute

// RateLimiter hands out one token bucket per client for a named scope, such
// as the auth routes or the gateway webhook. Buckets idle longer than ttl
// are pruned while new clients arrive.
type RateLimiter struct {
	scope   string
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
	pruned  time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(scope string, rps float64, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		scope:   scope,
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes a token for client. When none is left it reports how long
// the client should wait before the next one.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	b, ok := rl.buckets[client]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[client] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	wait := r.DelayFrom(now)
	if wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.pruned) < rl.ttl {
		return
	}
	for client, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.ttl {
			delete(rl.buckets, client)
		}
	}
	rl.pruned = now
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.Allow(c.ClientIP())
		if !ok {
			metrics.RecordRateLimited(rl.scope)
			if wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			api.Error(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware limits scope to rps requests per second per client
// IP with the given burst.
func RateLimitMiddleware(scope string, rps float64, burst int) gin.HandlerFunc {
	return NewRateLimiter(scope, rps, burst, idleBucketTTL).Middleware()
}
