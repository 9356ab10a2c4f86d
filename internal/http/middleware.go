package http

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"jobboard/internal/domain"
	"jobboard/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "auth_user"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (h *Handler) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := h.logger.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch {
		case status >= 500:
			entry.Error("request completed")
		case status >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// TimeoutMiddleware bounds the request context so repository calls give up after d.
func TimeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.gate.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// requireRole must run after authRequired; without a resolved user it answers 401.
func requireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireRole(currentUser(c), roles...); err != nil {
			renderError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
