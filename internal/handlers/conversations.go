package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-bff/internal/session"
	"chat-bff/internal/upstream"
)

// ConversationHandler proxies conversation reads and exposes the
// reconciled per-session view and its channel operations.
type ConversationHandler struct {
	upstream upstream.Client
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(client upstream.Client) *ConversationHandler {
	return &ConversationHandler{upstream: client}
}

// List fetches the conversation list upstream and installs it into the
// session's store, seeding the view the realtime events reconcile against.
func (h *ConversationHandler) List(c *gin.Context) {
	rt, ok := runtimeOrAbort(c)
	if !ok {
		return
	}

	conversations, err := h.upstream.ListConversations(c.Request.Context(), session.RequestToken(c))
	if err != nil {
		writeProxyError(c, err)
		return
	}

	rt.Store().SetConversations(conversations)
	c.JSON(http.StatusOK, rt.Store().Conversations())
}

// ListForUser proxies the per-user conversation lookup without touching
// the session view.
func (h *ConversationHandler) ListForUser(c *gin.Context) {
	conversations, err := h.upstream.ConversationsForUser(c.Request.Context(), session.RequestToken(c), c.Param("userId"))
	if err != nil {
		writeProxyError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// Join emits a join request over the realtime channel; the acknowledgement
// seeds the message cache. Without a connected channel the join is
// dropped, and the caller is told so it can retry after connect.
func (h *ConversationHandler) Join(c *gin.Context) {
	rt, ok := runtimeOrAbort(c)
	if !ok {
		return
	}

	conversationID := c.Param("conversation_id")
	if !rt.Store().JoinConversation(c.Request.Context(), conversationID) {
		c.JSON(http.StatusConflict, gin.H{
			"status":  http.StatusConflict,
			"message": "realtime channel not connected",
			"url":     c.Request.URL.Path,
		})
		return
	}

	rt.Store().SetCurrent(conversationID)
	messages, _ := rt.Store().Messages(conversationID)
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// Messages reads the cached history for a joined conversation.
func (h *ConversationHandler) Messages(c *gin.Context) {
	rt, ok := runtimeOrAbort(c)
	if !ok {
		return
	}

	messages, joined := rt.Store().Messages(c.Param("conversation_id"))
	if !joined {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  http.StatusNotFound,
			"message": "conversation not joined",
			"url":     c.Request.URL.Path,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// Send emits a fire-and-forget message. Nothing is inserted locally; the
// message shows up when the gateway echoes it back.
func (h *ConversationHandler) Send(c *gin.Context) {
	rt, ok := runtimeOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error(), "url": c.Request.URL.Path})
		return
	}

	if !rt.Store().SendMessage(c.Param("conversation_id"), req.Content) {
		c.JSON(http.StatusConflict, gin.H{
			"status":  http.StatusConflict,
			"message": "realtime channel not connected",
			"url":     c.Request.URL.Path,
		})
		return
	}
	c.Status(http.StatusAccepted)
}

// Focus zeroes the unread counter and emits the read-receipt signal.
func (h *ConversationHandler) Focus(c *gin.Context) {
	rt, ok := runtimeOrAbort(c)
	if !ok {
		return
	}
	rt.Store().HandleFocus(c.Param("conversation_id"))
	c.Status(http.StatusNoContent)
}

// Online returns the current presence set.
func (h *ConversationHandler) Online(c *gin.Context) {
	rt, ok := runtimeOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"userIds": rt.Store().OnlineUsers()})
}
