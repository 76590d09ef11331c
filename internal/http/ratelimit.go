package http

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimit bounds login and registration attempts per client IP.
// A zero Requests disables limiting.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

type limiterSet struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastCleanup) >= 5*time.Minute {
		s.lastCleanup = time.Now()
		// a full bucket means the key has been idle
		for k, l := range s.limiters {
			if l.Tokens() >= float64(s.burst) {
				delete(s.limiters, k)
			}
		}
	}

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = l
	}
	return l
}

func rateLimitMiddleware(cfg RateLimit, logger *logrus.Logger) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Requests
	}

	set := &limiterSet{
		limiters:    make(map[string]*rate.Limiter),
		limit:       rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter := set.get(key)
		if limiter.Allow() {
			c.Next()
			return
		}

		reservation := limiter.Reserve()
		retryAfter := max(int(reservation.Delay().Seconds()), 1)
		reservation.Cancel()

		logger.WithFields(logrus.Fields{
			"client":      key,
			"path":        c.Request.URL.Path,
			"retry_after": retryAfter,
		}).Warn("rate limit exceeded")

		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
	}
}
