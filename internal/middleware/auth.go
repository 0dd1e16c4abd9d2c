package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-bff/internal/app"
	"chat-bff/internal/guard"
	"chat-bff/internal/session"
)

// RuntimeContextKey is where the guard stores the caller's runtime.
const RuntimeContextKey = "runtime"

// SessionGuard authenticates API requests against the session runtime.
// The cookie token identifies the runtime; verification is cached, so
// after the first successful round trip per session this middleware makes
// no upstream calls.
func SessionGuard(registry *app.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.RequestToken(c)
		if token == "" {
			abortUnauthorized(c, "missing session token")
			return
		}

		rt := registry.Runtime(token)
		if !rt.Session().Verify(c.Request.Context(), token, false) {
			registry.DiscardUnauthenticated(token)
			session.ClearCookie(c)
			abortUnauthorized(c, "session verification failed")
			return
		}

		c.Set(RuntimeContextKey, rt)
		c.Set("userID", rt.Session().UserID())
		c.Next()
	}
}

// RuntimeFromContext returns the runtime installed by SessionGuard.
func RuntimeFromContext(c *gin.Context) (*app.Runtime, bool) {
	val, ok := c.Get(RuntimeContextKey)
	if !ok {
		return nil, false
	}
	rt, ok := val.(*app.Runtime)
	return rt, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  http.StatusUnauthorized,
		"message": message,
		"url":     guard.LoginPath,
	})
}
