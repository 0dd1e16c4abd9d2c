package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-bff/internal/app"
	"chat-bff/internal/guard"
	"chat-bff/internal/session"
)

// NavigateHandler answers the navigation layer's guard questions. The
// server-rendered first load asks with context=render (cookie-only, no
// network); subsequent client-side navigations ask with context=interactive.
type NavigateHandler struct {
	registry *app.Registry
}

func NewNavigateHandler(registry *app.Registry) *NavigateHandler {
	return &NavigateHandler{registry: registry}
}

// Decide handles GET /api/navigate?to=<route>&from=<route>&context=render|interactive.
func (h *NavigateHandler) Decide(c *gin.Context) {
	to := guard.Lookup(c.Query("to"))
	from := guard.Lookup(c.Query("from"))
	cookieToken := session.CookieToken(c)

	var outcome guard.Outcome
	if c.Query("context") == "render" {
		outcome = guard.DecideRenderTime(to, cookieToken)
	} else {
		// Without a token there is no runtime worth creating; a fresh
		// unauthenticated session answers the decision without a network call.
		sess := guard.SessionVerifier(session.New(nil))
		if cookieToken != "" {
			sess = h.registry.Runtime(cookieToken).Session()
		}
		outcome = guard.DecideInteractive(c.Request.Context(), to, from, cookieToken, sess)
		if cookieToken != "" {
			h.registry.DiscardUnauthenticated(cookieToken)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"proceed":  outcome.Proceed(),
		"redirect": outcome.Redirect,
	})
}
