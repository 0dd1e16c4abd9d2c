package telemetry

import (
	"context"
	"log"
	"time"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter publishes session and channel lifecycle events.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type AuditEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventName     string         `json:"event_name"`
	OccurredAt    string         `json:"occurred_at"`
	Service       string         `json:"service"`
	Environment   string         `json:"environment"`
	RequestID     string         `json:"request_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// EmitSession records a session transition (session_login, session_logout,
// session_verify_failed). clientIP identifies the browser end of the session.
func (e *AuditEmitter) EmitSession(ctx context.Context, eventName, requestID, userID, clientIP string) {
	var payload map[string]any
	if clientIP != "" {
		payload = map[string]any{"client_ip": clientIP}
	}
	e.emit(ctx, "session_events", eventName, requestID, userID, payload)
}

// EmitChannel records a gateway channel transition (channel_connect,
// channel_disconnect, channel_error).
func (e *AuditEmitter) EmitChannel(ctx context.Context, eventName, userID, reason string) {
	var payload map[string]any
	if reason != "" {
		payload = map[string]any{"reason": reason}
	}
	e.emit(ctx, "channel_events", eventName, "", userID, payload)
}

func (e *AuditEmitter) emit(ctx context.Context, eventType, eventName, requestID, userID string, payload map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     eventType,
		EventName:     eventName,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
