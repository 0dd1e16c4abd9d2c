package realtime

import (
	"context"
	"log"
	"sync"

	"chat-bff/internal/models"
	"chat-bff/internal/session"
	"chat-bff/internal/telemetry"
)

// Supervisor derives the channel lifecycle from session token presence:
// token appears, connect; token disappears, disconnect and discard the
// connection object. At most one live channel per session.
type Supervisor struct {
	gatewayURL string
	handler    Handler
	audit      *telemetry.AuditEmitter

	mu      sync.Mutex
	token   string
	channel *Channel
}

func NewSupervisor(gatewayURL string, handler Handler, audit *telemetry.AuditEmitter) *Supervisor {
	return &Supervisor{gatewayURL: gatewayURL, handler: handler, audit: audit}
}

// OnToken reacts to session token transitions; register it with
// Session.Watch. Connection establishment runs in the background so a
// login response is never blocked on the gateway handshake.
func (s *Supervisor) OnToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		if s.channel != nil {
			s.channel.Close()
			s.channel = nil
			log.Printf("gateway channel discarded: session ended")
		}
		s.token = ""
		return
	}

	if s.channel != nil {
		if s.token == token {
			return
		}
		// Token rotated: the old authenticated channel must not outlive it.
		s.channel.Close()
	}

	userID := ""
	if claims, err := session.DecodeClaims(token); err == nil {
		userID = claims.UserID
	}

	channel := NewChannel(s.gatewayURL, token, userID, s.handler, s.audit)
	s.channel = channel
	s.token = token

	go func() {
		if err := channel.Connect(context.Background()); err != nil {
			log.Printf("gateway connect failed: %v", err)
		}
	}()
}

// Channel returns the current handle, nil when no session token is set.
func (s *Supervisor) Channel() *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// The supervisor doubles as the store's emitter: conversation operations
// always go through whatever connection currently exists.

func (s *Supervisor) Connected() bool {
	channel := s.Channel()
	return channel != nil && channel.Connected()
}

func (s *Supervisor) JoinConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	channel := s.Channel()
	if channel == nil {
		return nil, ErrNotConnected
	}
	return channel.JoinConversation(ctx, conversationID)
}

func (s *Supervisor) SendMessage(conversationID, content string) error {
	channel := s.Channel()
	if channel == nil {
		return ErrNotConnected
	}
	return channel.SendMessage(conversationID, content)
}

func (s *Supervisor) FocusInput(conversationID string) error {
	channel := s.Channel()
	if channel == nil {
		return ErrNotConnected
	}
	return channel.FocusInput(conversationID)
}
