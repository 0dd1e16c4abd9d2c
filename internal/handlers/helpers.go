package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat-bff/internal/app"
	"chat-bff/internal/middleware"
	"chat-bff/internal/observability"
	"chat-bff/internal/upstream"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// writeProxyError renders an upstream failure in the normalized
// {status, message, url} shape, echoing the upstream status.
func writeProxyError(c *gin.Context, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, apiErr)
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{
		"status":  http.StatusBadGateway,
		"message": err.Error(),
		"url":     c.Request.URL.Path,
	})
}

// runtimeOrAbort fetches the runtime installed by the session guard.
func runtimeOrAbort(c *gin.Context) (*app.Runtime, bool) {
	rt, ok := middleware.RuntimeFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "no session runtime",
			"url":     c.Request.URL.Path,
		})
		return nil, false
	}
	return rt, true
}
