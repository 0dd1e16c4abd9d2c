package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-bff/internal/app"
	"chat-bff/internal/models"
	"chat-bff/internal/observability"
	"chat-bff/internal/session"
	"chat-bff/internal/telemetry"
	"chat-bff/internal/upstream"
)

// AuthHandler manages the session lifecycle endpoints.
type AuthHandler struct {
	upstream upstream.Client
	registry *app.Registry
	audit    *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(client upstream.Client, registry *app.Registry, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{upstream: client, registry: registry, audit: audit}
}

// Login proxies the credential check upstream and, on success, installs
// the session: the cookie and the in-memory state are both written before
// the response goes out, so no reader observes one without the other.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error(), "url": c.Request.URL.Path})
		return
	}

	resp, err := h.upstream.Login(c.Request.Context(), req)
	if err != nil {
		writeProxyError(c, err)
		return
	}

	rt := h.registry.Runtime(resp.AccessToken)
	session.WriteCookie(c, resp.AccessToken, h.registry.CookieTTL())
	rt.Session().Login(resp.UserInfo, resp.AccessToken)

	h.audit.EmitSession(c.Request.Context(), "session_login", requestIDFromContext(c), resp.UserInfo.ID, observability.IPFromRequest(c.Request))
	c.JSON(http.StatusOK, resp)
}

// Register is a straight proxy; the upstream status is echoed on failure.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error(), "url": c.Request.URL.Path})
		return
	}

	resp, err := h.upstream.Register(c.Request.Context(), req)
	if err != nil {
		writeProxyError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Verify resolves the caller's session. A missing token answers without
// any upstream call; a failed verification clears the cookie so the
// browser and the BFF agree again within one request cycle.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := session.RequestToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "message": "not authenticated", "url": c.Request.URL.Path})
		return
	}

	rt := h.registry.Runtime(token)
	if !rt.Session().Verify(c.Request.Context(), token, false) {
		h.registry.DiscardUnauthenticated(token)
		session.ClearCookie(c)
		h.audit.EmitSession(c.Request.Context(), "session_verify_failed", requestIDFromContext(c), "", observability.IPFromRequest(c.Request))
		c.JSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "message": "session verification failed", "url": c.Request.URL.Path})
		return
	}

	c.JSON(http.StatusOK, rt.Session().User())
}

// Logout clears the session and the cookie. Idempotent: logging out an
// already-dead session still just clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := session.RequestToken(c)
	if token != "" {
		if rt, ok := h.registry.Peek(token); ok {
			userID := rt.Session().UserID()
			rt.Session().Logout()
			h.audit.EmitSession(c.Request.Context(), "session_logout", requestIDFromContext(c), userID, observability.IPFromRequest(c.Request))
		}
	}
	session.ClearCookie(c)
	c.Status(http.StatusNoContent)
}
