package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-bff/internal/session"
	"chat-bff/internal/upstream"
)

// UserHandler proxies user directory reads.
type UserHandler struct {
	upstream upstream.Client
}

func NewUserHandler(client upstream.Client) *UserHandler {
	return &UserHandler{upstream: client}
}

// List returns the upstream user directory.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.upstream.ListUsers(c.Request.Context(), session.RequestToken(c))
	if err != nil {
		writeProxyError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
