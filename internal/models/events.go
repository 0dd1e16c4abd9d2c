package models

// Gateway event payloads. Each inbound frame is decoded into one of these
// strict shapes at the channel boundary; malformed payloads are dropped there.

// ReceivedMessagePayload carries a server-echoed message.
type ReceivedMessagePayload struct {
	Status string  `json:"status"`
	Data   Message `json:"data"`
}

// OnlineUsersPayload is a wholesale replacement of the presence set.
type OnlineUsersPayload struct {
	UserIDs []string `json:"userIds"`
}

// JoinConversationPayload requests membership of a conversation room.
type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// JoinConversationAck carries the conversation history returned by the
// gateway when a join request is acknowledged.
type JoinConversationAck struct {
	Data []Message `json:"data"`
}

// OutgoingMessage is the body of a sendMessage frame.
type OutgoingMessage struct {
	Conversation string `json:"conversation"`
	Type         string `json:"type"`
	Content      string `json:"content"`
}

// SendMessagePayload wraps an outgoing message.
type SendMessagePayload struct {
	Message OutgoingMessage `json:"message"`
}

// FocusInputPayload is the read-receipt signal for a conversation.
type FocusInputPayload struct {
	ConversationID string `json:"conversationId"`
}
