package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Allower decides whether a request identified by key may proceed.
type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Resetter clears the recorded requests of a key. Allowers that implement it
// support Policy.ResetRoutes.
type Resetter interface {
	Reset(ctx context.Context, key string) error
}

// Policy is the request budget applied per client and route.
type Policy struct {
	Limit  int
	Window time.Duration

	// ResetRoutes are the route patterns whose successful (2xx) response
	// restores the client's full budget on that route, as after a login.
	ResetRoutes []string
}

func (p Policy) resets(route string) bool {
	for _, r := range p.ResetRoutes {
		if r == route {
			return true
		}
	}
	return false
}

// MessageTooManyRequests is returned in the envelope of a throttled request.
const MessageTooManyRequests = "Too many requests. Please try again later."

// Middleware throttles each client IP per route. When the backend fails the
// request is let through and the failure is logged.
func Middleware(allower Allower, policy Policy, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := route + ":" + c.ClientIP()

		decision, err := allower.Allow(c.Request.Context(), key, policy.Limit, policy.Window)
		if err != nil {
			logger.Error("rate limit check failed", slog.String("key", key), slog.String("error", err.Error()))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retry := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			logger.Warn("rate limit exceeded", slog.String("key", key), slog.Int("limit", decision.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": MessageTooManyRequests,
				"data":    nil,
				"errors":  []string{},
			})
			return
		}
		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 || !policy.resets(route) {
			return
		}
		if resetter, ok := allower.(Resetter); ok {
			if err := resetter.Reset(c.Request.Context(), key); err != nil {
				logger.Warn("rate limit reset failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
	}
}
