package handlers

import (
	"errors"
	"net/http"
	"strings"

	"plant_monitor/internal/models"
	"plant_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey       = "session"
	accessTokenQuery = "access_token"
)

// sessionMiddleware accepts a Bearer token, or ?access_token= for clients
// that cannot set headers (browser WebSockets).
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, msg := bearerToken(c)
	if msg != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	sess, err := h.services.ValidateSession(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidToken) && !errors.Is(err, service.ErrSessionNotFound) &&
			!errors.Is(err, service.ErrSessionExpired) {
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to validate session", "session_validate_failed", err)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(sessionKey, sess)
	c.Next()
}

func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query(accessTokenQuery); q != "" {
			return q, ""
		}
		return "", "missing Authorization header"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "invalid Authorization header format"
	}
	return parts[1], ""
}

// currentSession returns the session stored by sessionMiddleware.
func currentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*models.Session)
	return s
}

// actor names the signed-in user for the audit trail.
func actor(c *gin.Context) string {
	if s := currentSession(c); s != nil {
		return s.Email
	}
	return ""
}
