package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Allower is the part of Limiter the middleware needs.
type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

type Rule struct {
	Limit  int
	Window time.Duration
}

// Middleware limits requests per client IP and route. Limiter failures let the request
// through.
type Middleware struct {
	limiter Allower
	rule    Rule
	logger  *logrus.Logger
	now     func() time.Time
}

func NewMiddleware(limiter Allower, rule Rule, logger *logrus.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		rule:    rule,
		logger:  logger,
		now:     time.Now,
	}
}

func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()

		res, err := m.limiter.Allow(c.Request.Context(), key, m.rule.Limit, m.rule.Window)
		if err != nil {
			m.logger.WithError(err).WithField("path", c.FullPath()).Warn("rate limit check failed, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retryAfter := int(math.Ceil(res.ResetAt.Sub(m.now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			m.logger.WithFields(logrus.Fields{
				"path":      c.FullPath(),
				"client_ip": c.ClientIP(),
			}).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, try again later",
				"code":  "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}
