package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterTTL = 5 * time.Minute

type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter is a per-client-IP token bucket. Idle clients are dropped at
// most once per limiterTTL, so a request only pays for a sweep when one is due.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	limit     rate.Limit
	burst     int
	now       func() time.Time
	log       *zap.Logger
}

// NewRateLimiter allows perMinute requests per IP, with bursts of half that.
func NewRateLimiter(perMinute int, log *zap.Logger) *RateLimiter {
	perMinute = max(perMinute, 1)
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   max(perMinute/2, 1),
		now:     time.Now,
		log:     log,
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	return l.get(key, now).AllowN(now, 1)
}

func (l *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterTTL {
		l.sweep(now)
	}

	if c, ok := l.clients[key]; ok {
		c.expires = now.Add(limiterTTL)
		return c.limiter
	}
	c := &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst), expires: now.Add(limiterTTL)}
	l.clients[key] = c
	return c.limiter
}

// sweep drops expired clients. Callers hold l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	for k, c := range l.clients {
		if now.After(c.expires) {
			delete(l.clients, k)
		}
	}
	l.lastSweep = now
}

// tracked returns the number of clients currently held.
func (l *RateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			l.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.String(http.StatusTooManyRequests, "Too many requests, try again in a minute.")
			c.Abort()
			return
		}
		c.Next()
	}
}
