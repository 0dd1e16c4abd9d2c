// Package realtime maintains the bidirectional gateway connection for one
// session. Inbound frames are decoded into strict typed payloads and
// consumed by a single dispatcher; outbound operations emit through the
// current connection handle.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-bff/internal/models"
	"chat-bff/internal/observability"
	"chat-bff/internal/telemetry"
)

const (
	// ReconnectAttempts bounds automatic recovery; after exhaustion the
	// channel stays disconnected until the session is rebuilt.
	ReconnectAttempts = 5
	ReconnectDelay    = time.Second
)

// Gateway event names.
const (
	EventReceivedMessage  = "receivedMessage"
	EventOnlineUsers      = "onlineUsers"
	EventJoinConversation = "joinConversation"
	EventSendMessage      = "sendMessage"
	EventFocusInput       = "focusInput"
	EventAck              = "ack"
)

var (
	ErrNotConnected = errors.New("gateway channel not connected")
	ErrClosed       = errors.New("gateway channel closed")
)

// Frame is the gateway wire envelope. Outbound join frames carry an ack id
// the gateway echoes back with the conversation history.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   uint64          `json:"ack,omitempty"`
}

// Handler consumes inbound gateway events.
type Handler interface {
	OnMessageReceived(msg models.Message)
	OnOnlineUsers(userIDs []string)
}

// Channel is one live gateway connection. Its lifecycle is owned by the
// Supervisor; everything else only emits through it.
type Channel struct {
	url     string
	token   string
	userID  string
	handler Handler
	audit   *telemetry.AuditEmitter
	dialer  *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	acks      map[uint64]chan json.RawMessage
	nextAck   uint64

	writeMu sync.Mutex
}

// NewChannel prepares a channel; Connect establishes it.
func NewChannel(url, token, userID string, handler Handler, audit *telemetry.AuditEmitter) *Channel {
	return &Channel{
		url:     url,
		token:   token,
		userID:  userID,
		handler: handler,
		audit:   audit,
		dialer:  websocket.DefaultDialer,
		acks:    make(map[uint64]chan json.RawMessage),
	}
}

// Connect dials the gateway, carrying the session token as the handshake
// credential. Dial failures are retried up to ReconnectAttempts times with
// a fixed delay; exhaustion leaves the channel disconnected with no
// further automatic action.
func (c *Channel) Connect(ctx context.Context) error {
	ctx, span := otel.Tracer("chat-bff/realtime").Start(ctx, "gateway.handshake")
	defer span.End()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	var lastErr error
	for attempt := 0; attempt <= ReconnectAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(ReconnectDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			lastErr = err
			observability.IncChannelEvent("dial_error")
			log.Printf("gateway dial failed (attempt %d/%d): %v", attempt+1, ReconnectAttempts+1, err)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return ErrClosed
		}
		c.conn = conn
		c.connected = true
		c.mu.Unlock()

		observability.IncChannelActive()
		observability.IncChannelEvent("connect")
		log.Printf("gateway channel connected url=%s", c.url)
		c.audit.EmitChannel(ctx, "channel_connect", c.userID, "")

		go c.readPump(conn)
		return nil
	}

	c.audit.EmitChannel(ctx, "channel_error", c.userID, fmt.Sprintf("connect attempts exhausted: %v", lastErr))
	return fmt.Errorf("gateway connect: %w", lastErr)
}

// Connected reports whether a live connection is installed.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && !c.closed
}

// Close tears the channel down for good; a closed channel never
// reconnects. Used when the session token disappears so a stale
// authenticated connection cannot outlive its session.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// JoinConversation emits a join frame and waits for the acknowledgement
// carrying the conversation history. The caller's context bounds the wait.
func (c *Channel) JoinConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	ackID, wait := c.registerAck()

	payload := models.JoinConversationPayload{ConversationID: conversationID}
	if err := c.writeFrame(Frame{Event: EventJoinConversation, Data: mustMarshal(payload), Ack: ackID}); err != nil {
		c.dropAck(ackID)
		return nil, err
	}

	select {
	case data, ok := <-wait:
		if !ok {
			return nil, ErrNotConnected
		}
		var ack models.JoinConversationAck
		if err := json.Unmarshal(data, &ack); err != nil {
			return nil, fmt.Errorf("malformed join acknowledgement: %w", err)
		}
		return ack.Data, nil
	case <-ctx.Done():
		c.dropAck(ackID)
		return nil, ctx.Err()
	}
}

// SendMessage is fire-and-forget; no acknowledgement is expected.
func (c *Channel) SendMessage(conversationID, content string) error {
	payload := models.SendMessagePayload{
		Message: models.OutgoingMessage{
			Conversation: conversationID,
			Type:         models.MessageTypeText,
			Content:      content,
		},
	}
	return c.writeFrame(Frame{Event: EventSendMessage, Data: mustMarshal(payload)})
}

// FocusInput emits the read-receipt signal for a conversation.
func (c *Channel) FocusInput(conversationID string) error {
	payload := models.FocusInputPayload{ConversationID: conversationID}
	return c.writeFrame(Frame{Event: EventFocusInput, Data: mustMarshal(payload)})
}

// readPump is the single goroutine delivering gateway events; handlers run
// sequentially, one event at a time.
func (c *Channel) readPump(conn *websocket.Conn) {
	var closeReason string
	defer func() {
		c.mu.Lock()
		wasClosed := c.closed
		c.connected = false
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()

		c.failPendingAcks()
		observability.DecChannelActive()
		observability.IncChannelEvent("disconnect")
		log.Printf("gateway channel disconnected: %s", closeReason)
		c.audit.EmitChannel(context.Background(), "channel_disconnect", c.userID, closeReason)
		conn.Close()

		if !wasClosed {
			go c.reconnect()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncChannelEvent("error")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			observability.IncChannelEvent("malformed_frame")
			log.Printf("gateway frame rejected: %v", err)
			continue
		}
		c.dispatch(frame)
	}
}

// dispatch routes one inbound frame. Payloads that fail validation are
// rejected here, never propagated half-decoded.
func (c *Channel) dispatch(frame Frame) {
	switch frame.Event {
	case EventAck:
		c.mu.Lock()
		wait, ok := c.acks[frame.Ack]
		delete(c.acks, frame.Ack)
		c.mu.Unlock()
		if ok {
			wait <- frame.Data
		}

	case EventReceivedMessage:
		var payload models.ReceivedMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.Data.ID == "" || payload.Data.ConversationID == "" {
			observability.IncChannelEvent("malformed_frame")
			log.Printf("receivedMessage payload rejected")
			return
		}
		observability.IncChannelEvent(EventReceivedMessage)
		c.handler.OnMessageReceived(payload.Data)

	case EventOnlineUsers:
		var payload models.OnlineUsersPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			observability.IncChannelEvent("malformed_frame")
			log.Printf("onlineUsers payload rejected")
			return
		}
		observability.IncChannelEvent(EventOnlineUsers)
		c.handler.OnOnlineUsers(payload.UserIDs)

	default:
		log.Printf("gateway event ignored: %s", frame.Event)
	}
}

// reconnect runs the bounded recovery loop after an unexpected drop.
func (c *Channel) reconnect() {
	if err := c.Connect(context.Background()); err != nil {
		log.Printf("gateway reconnect exhausted: %v", err)
	}
}

func (c *Channel) registerAck() (uint64, chan json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextAck++
	wait := make(chan json.RawMessage, 1)
	c.acks[c.nextAck] = wait
	return c.nextAck, wait
}

func (c *Channel) dropAck(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.acks, id)
}

// failPendingAcks releases join waiters on disconnect so nothing blocks on
// a connection that no longer exists.
func (c *Channel) failPendingAcks() {
	c.mu.Lock()
	pending := c.acks
	c.acks = make(map[uint64]chan json.RawMessage)
	c.mu.Unlock()
	for _, wait := range pending {
		close(wait)
	}
}

func (c *Channel) writeFrame(frame Frame) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected && !c.closed
	c.mu.Unlock()
	if conn == nil || !connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// All outbound payloads are plain structs; this cannot fail.
		panic(err)
	}
	return data
}
