package session

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the single persisted artifact of a session.
const CookieName = "accessToken"

// DefaultCookieTTL matches the upstream access token lifetime.
const DefaultCookieTTL = time.Hour

// WriteCookie persists the token on the response.
func WriteCookie(c *gin.Context, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCookieTTL
	}
	c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", false, true)
}

// ClearCookie expires the token cookie.
func ClearCookie(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// CookieToken returns the token from the request cookie, empty when absent.
func CookieToken(c *gin.Context) string {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return token
}

// RequestToken resolves the caller's token: the Authorization header wins,
// the cookie is the fallback for requests the browser cannot decorate.
func RequestToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" && header != "undefined" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return CookieToken(c)
}
