package models

import "time"

// Sender is the profile subset the gateway attaches to every message.
type Sender struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

// Message is immutable once received.
type Message struct {
	ID             string     `json:"_id"`
	ConversationID string     `json:"conversation"`
	Type           string     `json:"type"`
	Content        string     `json:"content"`
	Sender         Sender     `json:"sender"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// MessageTypeText is the only outbound message type the BFF emits.
const MessageTypeText = "TEXT"
