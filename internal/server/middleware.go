package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmgmt/internal/auth"
	"taskmgmt/internal/models"
	"taskmgmt/internal/policy"
	"taskmgmt/internal/service"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxActor     = "actor"
)

// requestID propagates a caller supplied request id or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// accessLog writes one structured line per request.
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("request_id", c.GetString(ctxRequestID)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if actor, ok := actorFrom(c); ok {
			attrs = append(attrs, slog.Int64("user_id", actor.ID))
		}
		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// authenticate requires a valid bearer token and stores the caller identity.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c, "Authorization token is missing.")
			return
		}

		claims, err := s.deps.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				unauthorized(c, "Token has expired.")
				return
			}
			unauthorized(c, "Invalid token.")
			return
		}
		if !policy.IsValidRole(string(claims.Role)) {
			unauthorized(c, "Invalid token.")
			return
		}

		c.Set(ctxActor, policy.Actor{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="taskmgmt"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, service.Fail[any](service.KindUnauthorized, message))
}

// requireRole rejects callers that hold none of the roles.
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok || !policy.HasRole(actor, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				service.Fail[any](service.KindForbidden, "You do not have permission to perform this action."))
			return
		}
		c.Next()
	}
}

// actorFrom returns the identity stored by authenticate.
func actorFrom(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(ctxActor)
	if !ok {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}

// mustActor is for handlers mounted behind authenticate.
func mustActor(c *gin.Context) policy.Actor {
	actor, _ := actorFrom(c)
	return actor
}
