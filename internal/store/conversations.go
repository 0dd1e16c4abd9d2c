// Package store reconciles the REST-fetched conversation list with the
// stream of gateway events into one consistent in-memory view.
package store

import (
	"context"
	"log"
	"sync"

	"chat-bff/internal/models"
)

// Emitter is the outbound side of the realtime channel as the store sees
// it. Only the channel's own lifecycle logic creates or destroys the
// connection; the store just emits through the current handle.
type Emitter interface {
	Connected() bool
	JoinConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	SendMessage(conversationID, content string) error
	FocusInput(conversationID string) error
}

// ConversationStore holds the ordered conversation list
// (most-recent-activity-first), the per-conversation message cache and the
// online-presence set. Every mutation runs to completion under one lock,
// so a reconciliation step is never observed half-applied.
type ConversationStore struct {
	selfID func() string

	mu            sync.RWMutex
	conversations []models.Conversation
	cache         map[string][]models.Message
	onlineUsers   []string
	current       string
	emitter       Emitter
}

// New builds an empty store. selfID supplies the current user id so
// self-sent echoes never bump unread counters.
func New(selfID func() string) *ConversationStore {
	return &ConversationStore{
		selfID: selfID,
		cache:  make(map[string][]models.Message),
	}
}

// SetEmitter wires the realtime channel in after construction; the channel
// needs the store as its event handler, so the two meet here.
func (s *ConversationStore) SetEmitter(e Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitter = e
}

// SetConversations installs the REST-fetched list. Duplicate ids are
// collapsed, first occurrence wins: the list never holds the same
// conversation twice.
func (s *ConversationStore) SetConversations(conversations []models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(conversations))
	list := make([]models.Conversation, 0, len(conversations))
	for _, conversation := range conversations {
		if _, dup := seen[conversation.ID]; dup {
			continue
		}
		seen[conversation.ID] = struct{}{}
		list = append(list, conversation)
	}
	s.conversations = list
}

// OnMessageReceived applies one gateway message to the view.
//
// The cache is only appended to when the conversation was joined this
// session; without a cache entry the message is dropped from the cache but
// still updates the list summary. A message for a conversation absent from
// the list is dropped entirely, no synthetic conversation is fabricated.
func (s *ConversationStore) OnMessageReceived(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if history, joined := s.cache[msg.ConversationID]; joined {
		s.cache[msg.ConversationID] = append(history, msg)
	}

	idx := s.indexOf(msg.ConversationID)
	if idx < 0 {
		return
	}

	last := msg
	s.conversations[idx].LastMessage = &last
	if msg.Sender.ID != s.selfID() {
		s.conversations[idx].UnreadCount++
	}
	if idx > 0 {
		moved := s.conversations[idx]
		s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
		s.conversations = append([]models.Conversation{moved}, s.conversations...)
	}
}

// OnOnlineUsers wholesale-replaces the presence set; no per-user
// join/leave events are synthesized.
func (s *ConversationStore) OnOnlineUsers(userIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onlineUsers = append([]string(nil), userIDs...)
}

// JoinConversation emits a join request and seeds the cache from the
// acknowledgement. Without a connected channel the join is silently
// dropped, not queued; the false return lets callers retry after connect.
func (s *ConversationStore) JoinConversation(ctx context.Context, conversationID string) bool {
	emitter := s.currentEmitter()
	if emitter == nil || !emitter.Connected() {
		return false
	}

	history, err := emitter.JoinConversation(ctx, conversationID)
	if err != nil {
		log.Printf("join conversation %s failed: %v", conversationID, err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Wholesale replace: the server history is last-writer-wins over any
	// pre-existing local entry.
	s.cache[conversationID] = append([]models.Message(nil), history...)
	return true
}

// SendMessage is fire-and-forget; the message becomes visible only when
// the gateway echoes it back, there is no optimistic local insert.
func (s *ConversationStore) SendMessage(conversationID, content string) bool {
	emitter := s.currentEmitter()
	if emitter == nil || !emitter.Connected() {
		return false
	}
	if err := emitter.SendMessage(conversationID, content); err != nil {
		log.Printf("send message to %s failed: %v", conversationID, err)
		return false
	}
	return true
}

// HandleFocus zeroes the local unread counter and emits the read-receipt
// signal when a channel is connected.
func (s *ConversationStore) HandleFocus(conversationID string) {
	s.UpdateUnreadCount(conversationID)
	emitter := s.currentEmitter()
	if emitter == nil || !emitter.Connected() {
		return
	}
	if err := emitter.FocusInput(conversationID); err != nil {
		log.Printf("focus signal for %s failed: %v", conversationID, err)
	}
}

// UpdateUnreadCount zeroes the counter; no-op when the id is unknown.
func (s *ConversationStore) UpdateUnreadCount(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(conversationID); idx >= 0 {
		s.conversations[idx].UnreadCount = 0
	}
}

func (s *ConversationStore) SetCurrent(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = conversationID
}

func (s *ConversationStore) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Conversations returns a copy of the ordered list.
func (s *ConversationStore) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Conversation(nil), s.conversations...)
}

// Messages returns the cached history for a joined conversation.
func (s *ConversationStore) Messages(conversationID string) ([]models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, joined := s.cache[conversationID]
	if !joined {
		return nil, false
	}
	return append([]models.Message(nil), history...), true
}

func (s *ConversationStore) OnlineUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.onlineUsers...)
}

func (s *ConversationStore) currentEmitter() Emitter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emitter
}

// indexOf assumes the caller holds the lock.
func (s *ConversationStore) indexOf(conversationID string) int {
	for i := range s.conversations {
		if s.conversations[i].ID == conversationID {
			return i
		}
	}
	return -1
}
