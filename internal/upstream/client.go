// Package upstream is the REST transport to the chat API. It attaches
// bearer credentials and normalizes every failure into an APIError so
// nothing above the proxy boundary ever sees a raw transport error.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"chat-bff/internal/models"
	"chat-bff/internal/observability"
)

// DefaultTimeout bounds every upstream round trip. There are no
// request-level retries.
const DefaultTimeout = 10 * time.Second

// APIError is the normalized upstream error shape.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %s: status %d: %s", e.URL, e.Status, e.Message)
}

// Client is the surface the rest of the BFF depends on.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	Verify(ctx context.Context, token string) (models.User, error)
	ListConversations(ctx context.Context, token string) ([]models.Conversation, error)
	ConversationsForUser(ctx context.Context, token, userID string) ([]models.Conversation, error)
	ListUsers(ctx context.Context, token string) ([]models.User, error)
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL     string
	environment string
	httpClient  *http.Client
}

// NewHTTPClient builds the proxy client for the given upstream base URL.
func NewHTTPClient(baseURL, environment string) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		environment: environment,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp)
	return resp, err
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, &resp)
	return resp, err
}

// Verify performs the whoami round trip. An empty body counts as a failure
// so callers never end up half-authenticated.
func (c *HTTPClient) Verify(ctx context.Context, token string) (models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", token, nil, &user); err != nil {
		return models.User{}, err
	}
	if user.ID == "" {
		return models.User{}, &APIError{
			Status:  http.StatusBadGateway,
			Message: "empty verify response",
			URL:     c.baseURL + "/api/auth/verify",
		}
	}
	return user, nil
}

func (c *HTTPClient) ListConversations(ctx context.Context, token string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := c.do(ctx, http.MethodGet, "/api/conversations", token, nil, &conversations)
	return conversations, err
}

func (c *HTTPClient) ConversationsForUser(ctx context.Context, token, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := c.do(ctx, http.MethodGet, "/api/conversations/user/"+userID, token, nil, &conversations)
	return conversations, err
}

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users)
	return users, err
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	url := c.baseURL + path

	ctx, span := otel.Tracer("chat-bff/upstream").Start(ctx, method+" "+path)
	defer span.End()
	span.SetAttributes(attribute.String("upstream.url", url))

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Status: http.StatusInternalServerError, Message: err.Error(), URL: url}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &APIError{Status: http.StatusInternalServerError, Message: err.Error(), URL: url}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.environment == "development" {
		log.Printf("upstream request: %s %s", method, url)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.ObserveUpstreamRequest(method, path, 0, time.Since(start))
		return &APIError{Status: http.StatusBadGateway, Message: err.Error(), URL: url}
	}
	defer resp.Body.Close()
	observability.ObserveUpstreamRequest(method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: http.StatusBadGateway, Message: err.Error(), URL: url}
	}

	if c.environment == "development" {
		log.Printf("upstream response: %s %s status=%d", method, url, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: upstreamMessage(data), URL: url}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Status: http.StatusBadGateway, Message: "malformed upstream response", URL: url}
		}
	}
	return nil
}

// upstreamMessage extracts a human-readable message from an error body.
func upstreamMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if len(data) > 0 {
		return string(data)
	}
	return "server error"
}
