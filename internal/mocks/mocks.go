package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-bff/internal/models"
	"chat-bff/internal/store"
	"chat-bff/internal/telemetry"
	"chat-bff/internal/upstream"
)

type UpstreamClientMock struct {
	mock.Mock
}

func (m *UpstreamClientMock) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	args := m.Called(ctx, req)
	var resp models.AuthResponse
	if val := args.Get(0); val != nil {
		resp = val.(models.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *UpstreamClientMock) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	args := m.Called(ctx, req)
	var resp models.AuthResponse
	if val := args.Get(0); val != nil {
		resp = val.(models.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *UpstreamClientMock) Verify(ctx context.Context, token string) (models.User, error) {
	args := m.Called(ctx, token)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UpstreamClientMock) ListConversations(ctx context.Context, token string) ([]models.Conversation, error) {
	args := m.Called(ctx, token)
	var conversations []models.Conversation
	if val := args.Get(0); val != nil {
		conversations = val.([]models.Conversation)
	}
	return conversations, args.Error(1)
}

func (m *UpstreamClientMock) ConversationsForUser(ctx context.Context, token, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, token, userID)
	var conversations []models.Conversation
	if val := args.Get(0); val != nil {
		conversations = val.([]models.Conversation)
	}
	return conversations, args.Error(1)
}

func (m *UpstreamClientMock) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	args := m.Called(ctx, token)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type EmitterMock struct {
	mock.Mock
}

func (m *EmitterMock) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *EmitterMock) JoinConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var history []models.Message
	if val := args.Get(0); val != nil {
		history = val.([]models.Message)
	}
	return history, args.Error(1)
}

func (m *EmitterMock) SendMessage(conversationID, content string) error {
	args := m.Called(conversationID, content)
	return args.Error(0)
}

func (m *EmitterMock) FocusInput(conversationID string) error {
	args := m.Called(conversationID)
	return args.Error(0)
}

// PublisherMock stands in for the audit event publisher.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ upstream.Client = (*UpstreamClientMock)(nil)
var _ store.Emitter = (*EmitterMock)(nil)
var _ telemetry.Publisher = (*PublisherMock)(nil)
