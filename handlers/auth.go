package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey        = "user_id"
	debugSubjectHead = "X-Debug-Subject"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Authenticate attaches the subject of a valid bearer token. Requests without a valid token pass through
// anonymously; RequireUser decides whether a route needs an identity.
func Authenticate(v TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.Next()
			return
		}

		sub, err := v.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			logger.DebugContext(c.Request.Context(), "bearer token rejected", "error", err, "request_id", requestID(c))
			c.Next()
			return
		}
		c.Set(userIDKey, sub)
		c.Next()
	}
}

// DevAuthenticate trusts the X-Debug-Subject header, or falls back to defaultSubject. Local use only.
func DevAuthenticate(defaultSubject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := strings.TrimSpace(c.GetHeader(debugSubjectHead))
		if sub == "" {
			sub = defaultSubject
		}
		if sub != "" {
			c.Set(userIDKey, sub)
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless an earlier middleware attached an identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) (string, bool) {
	sub := c.GetString(userIDKey)
	return sub, sub != ""
}
