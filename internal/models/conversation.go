package models

import "time"

// Member is a conversation participant.
type Member struct {
	User     User      `json:"user"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Conversation is a chat thread between two or more users. The unread
// counter and last message are maintained locally from gateway events.
type Conversation struct {
	ID          string    `json:"_id"`
	IsGroup     bool      `json:"isGroup"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastMessage *Message  `json:"lastMessage,omitempty"`
	UnreadCount int       `json:"unreadCount"`
}
